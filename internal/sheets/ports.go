package sheets

import (
	"context"
	"trastes/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordWriter persists chore records. All records of one call are
	// written together; a failure fails the whole call.
	RecordWriter interface {
		Append(ctx context.Context, records ...core.Record) (rowRef string, err error)
	}

	// RecordReader returns every stored record in insertion order, or an
	// empty slice when nothing has been logged yet.
	RecordReader interface {
		ReadAll(ctx context.Context) ([]core.Record, error)
	}
)
