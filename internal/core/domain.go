package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is how the date column is persisted (ISO calendar date).
	DateLayout = "2006-01-02"
	// TimeLayout is how the time column is persisted (24h wall clock).
	TimeLayout = "15:04:05"
)

// Header is the column layout shared by every store. The first row of a
// spreadsheet-backed store is reserved for it.
var Header = []string{"activiteit", "persoon", "datum", "tijd"}

type (
	// Record is one logged occurrence of a person performing an activity.
	// At holds the wall-clock date and time in the household time zone;
	// stores keep the date and the time as two separate columns without
	// an offset.
	Record struct {
		Activity string
		Person   string
		At       time.Time
	}
)

var (
	ErrEmptyActivity    = errors.New("empty activity")
	ErrEmptyPerson      = errors.New("empty person")
	ErrUnknownActivity  = errors.New("unknown activity")
	ErrUnknownPerson    = errors.New("unknown person")
	ErrInvalidTimestamp = errors.New("invalid date or time")
)

// Date returns the persisted date column.
func (r Record) Date() string {
	return r.At.Format(DateLayout)
}

// Time returns the persisted time column.
func (r Record) Time() string {
	return r.At.Format(TimeLayout)
}

// Row returns the record in Header column order.
func (r Record) Row() []string {
	return []string{r.Activity, r.Person, r.Date(), r.Time()}
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.Activity) == "" {
		return ErrEmptyActivity
	}
	if strings.TrimSpace(r.Person) == "" {
		return ErrEmptyPerson
	}
	if r.At.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}

// ParseRow builds a record from the four persisted columns. Missing
// trailing columns are treated as empty. A missing time means midnight.
func ParseRow(cols []string) (Record, error) {
	get := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}
	rec := Record{Activity: get(0), Person: get(1)}

	at, err := ParseTimestamp(get(2), get(3))
	if err != nil {
		return Record{}, err
	}
	rec.At = at

	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ParseTimestamp joins a date and a time column. Dates written by
// spreadsheet tools sometimes carry a "00:00:00" suffix, which is dropped.
// Times without seconds are accepted.
func ParseTimestamp(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if len(date) > len(DateLayout) {
		date = date[:len(DateLayout)]
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidTimestamp, date)
	}
	if clock == "" {
		return d, nil
	}
	for _, layout := range []string{TimeLayout, "15:04"} {
		if c, err := time.Parse(layout, clock); err == nil {
			return d.Add(time.Duration(c.Hour())*time.Hour +
				time.Duration(c.Minute())*time.Minute +
				time.Duration(c.Second())*time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidTimestamp, clock)
}
