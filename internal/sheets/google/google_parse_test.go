package google

import (
	"context"
	"testing"
)

func TestParseValues(t *testing.T) {
	values := [][]interface{}{
		{"Gekookt", "Nelson", "2025-07-01", "18:30:00"},
		{},
		{"", "", "", ""},
		{"Afgewassen", "Monze", "2025-07-01"},
		{"Afgedroogd", "Monze", "not a date", "10:00:00"},
		{" Afgedroogd ", "Nelson", "2025-07-02", "09:15"},
	}
	recs := parseValues(context.Background(), values)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(recs), recs)
	}
	if recs[0].Activity != "Gekookt" || recs[0].Time() != "18:30:00" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Time() != "00:00:00" {
		t.Fatalf("missing time should mean midnight, got %s", recs[1].Time())
	}
	if recs[2].Activity != "Afgedroogd" || recs[2].Time() != "09:15:00" {
		t.Fatalf("unexpected last record: %+v", recs[2])
	}
}

func TestParseValuesEmpty(t *testing.T) {
	recs := parseValues(context.Background(), nil)
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", recs)
	}
}

func TestRangeQuoting(t *testing.T) {
	c := &Client{sheetName: "Nelson's log"}
	if got := c.rng("A2:D"); got != "'Nelson''s log'!A2:D" {
		t.Fatalf("unexpected range: %s", got)
	}
}
