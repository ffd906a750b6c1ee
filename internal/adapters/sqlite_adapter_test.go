package adapters

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trastes/internal/core"
	"trastes/internal/services"
	"trastes/internal/sheets"
	"trastes/internal/storage"
)

var (
	_ sheets.RecordWriter = (*SQLiteAdapter)(nil)
	_ sheets.RecordReader = (*SQLiteAdapter)(nil)
)

func TestSQLiteAdapterRoundTrip(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "trastes.db"))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	a := NewSQLiteAdapter(repo, services.NewRecordService(repo, nil))
	t.Cleanup(func() { a.Close() })

	ctx := context.Background()
	at := time.Date(2025, 8, 9, 8, 0, 0, 0, time.UTC)
	ref, err := a.Append(ctx, core.Record{Activity: "Afgewassen", Person: "Monze", At: at})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "sqlite:1" {
		t.Errorf("ref = %q", ref)
	}

	recs, err := a.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 1 || recs[0].Person != "Monze" || !recs[0].At.Equal(at) {
		t.Fatalf("unexpected records %+v", recs)
	}
}
