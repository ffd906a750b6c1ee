package memory

import (
	"context"
	"fmt"
	"sync"

	"trastes/internal/core"
	ports "trastes/internal/sheets"
)

var (
	_ ports.RecordWriter = (*Store)(nil)
	_ ports.RecordReader = (*Store)(nil)
)

// Store keeps records in process memory. Everything is lost on restart.
type Store struct {
	mu    sync.Mutex
	items []core.Record
}

func New(seed ...core.Record) *Store {
	return &Store{items: append([]core.Record(nil), seed...)}
}

// Append stores the records and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, records ...core.Record) (string, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := len(s.items) + 1
	s.items = append(s.items, records...)
	return fmt.Sprintf("mem:%d-%d", first, len(s.items)), nil
}

// ReadAll returns a copy of the stored records.
func (s *Store) ReadAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record{}, s.items...), nil
}
