package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trastes/internal/amqp"
	"trastes/internal/core"
	"trastes/internal/sheets/memory"
	"trastes/internal/storage"
)

type fakeStore struct {
	records map[int64]*storage.StoredRecord
	markErr error
}

func newFakeStore(n int) *fakeStore {
	f := &fakeStore{records: map[int64]*storage.StoredRecord{}}
	at := time.Date(2025, 8, 9, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		f.records[int64(i)] = &storage.StoredRecord{
			ID:         int64(i),
			Record:     core.Record{Activity: "Afgewassen", Person: "Nelson", At: at.Add(time.Duration(i) * time.Minute)},
			SyncStatus: storage.SyncPending,
		}
	}
	return f
}

func (f *fakeStore) GetRecords(_ context.Context, ids []int64) ([]storage.StoredRecord, error) {
	var out []storage.StoredRecord
	for _, id := range ids {
		if r, ok := f.records[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPendingSyncRecords(_ context.Context, limit int) ([]storage.StoredRecord, error) {
	var out []storage.StoredRecord
	for _, r := range f.records {
		if r.SyncStatus != storage.SyncSynced {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MarkSynced(_ context.Context, ids ...int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	for _, id := range ids {
		f.records[id].SyncStatus = storage.SyncSynced
	}
	return nil
}

func (f *fakeStore) MarkSyncError(_ context.Context, ids ...int64) error {
	for _, id := range ids {
		f.records[id].SyncStatus = storage.SyncError
	}
	return nil
}

type failingWriter struct{}

func (failingWriter) Append(context.Context, ...core.Record) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHandleSyncMessage(t *testing.T) {
	store := newFakeStore(3)
	sheet := memory.New()
	w := NewSyncWorker(store, sheet, 10)
	ctx := context.Background()

	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(1, 2)))

	recs, _ := sheet.ReadAll(ctx)
	assert.Len(t, recs, 2)
	assert.Equal(t, storage.SyncSynced, store.records[1].SyncStatus)
	assert.Equal(t, storage.SyncPending, store.records[3].SyncStatus)

	// redelivery does not duplicate rows
	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(1, 2)))
	recs, _ = sheet.ReadAll(ctx)
	assert.Len(t, recs, 2)
}

func TestHandleSyncMessageMarksErrors(t *testing.T) {
	store := newFakeStore(1)
	w := NewSyncWorker(store, failingWriter{}, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewRecordSyncMessage(1))
	require.Error(t, err)
	assert.Equal(t, storage.SyncError, store.records[1].SyncStatus)
}

func TestProcessPendingRecords(t *testing.T) {
	store := newFakeStore(5)
	store.records[2].SyncStatus = storage.SyncSynced
	sheet := memory.New()
	w := NewSyncWorker(store, sheet, 3)

	n, err := w.ProcessPendingRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recs, _ := sheet.ReadAll(context.Background())
	require.Len(t, recs, 3)
	assert.True(t, recs[0].At.Before(recs[1].At), "records keep insertion order")
}

func TestStartupSyncCheckDrainsBacklog(t *testing.T) {
	store := newFakeStore(7)
	sheet := memory.New()
	w := NewSyncWorker(store, sheet, 3)

	require.NoError(t, w.StartupSyncCheck(context.Background()))

	recs, _ := sheet.ReadAll(context.Background())
	assert.Len(t, recs, 7)
	for id, r := range store.records {
		assert.Equal(t, storage.SyncSynced, r.SyncStatus, "record %d", id)
	}
}

// gatedWriter holds the first Append until release is closed.
type gatedWriter struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedWriter) Append(ctx context.Context, records ...core.Record) (string, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Store.Append(ctx, records...)
}

func TestMessageAndSweepDoNotDuplicateRows(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1)
	sheet := &gatedWriter{Store: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	w := NewSyncWorker(store, sheet, 10)

	var (
		wg       sync.WaitGroup
		msgErr   error
		sweepErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		msgErr = w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(1))
	}()
	<-sheet.entered

	go func() {
		defer wg.Done()
		_, sweepErr = w.ProcessPendingRecords(ctx)
	}()
	// let the sweep reach the worker while the first append is in flight
	time.Sleep(20 * time.Millisecond)
	close(sheet.release)
	wg.Wait()

	require.NoError(t, msgErr)
	require.NoError(t, sweepErr)
	recs, _ := sheet.ReadAll(ctx)
	assert.Len(t, recs, 1, "one stored record must become one sheet row")
	assert.Equal(t, storage.SyncSynced, store.records[1].SyncStatus)
}

func TestStartupSyncCheckStopsWhenMarkingFails(t *testing.T) {
	store := newFakeStore(7)
	store.markErr = errors.New("database is locked")
	sheet := memory.New()
	w := NewSyncWorker(store, sheet, 3)

	err := w.StartupSyncCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.markErr)

	recs, _ := sheet.ReadAll(context.Background())
	assert.Len(t, recs, 3, "the first batch is appended once and not retried")
}
