package diagnostics_test

import (
	"context"
	"errors"
	"smart_alarm/internal/diagnostics"
	"smart_alarm/internal/logger"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type savedRow struct {
	source, message, payload string
}

type memStore struct {
	mu   sync.Mutex
	rows []savedRow
	err  error
}

func (s *memStore) SaveDiagnostic(_ context.Context, source, message, payload string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, savedRow{source, message, payload})
	return nil
}

func TestStoreRecorder(t *testing.T) {
	logger.Discard()

	store := &memStore{}
	rec := diagnostics.Multi{diagnostics.LogRecorder{}, diagnostics.NewStoreRecorder(store)}

	rec.Record(context.Background(), "news", errors.New("articles missing"), `{"status":"error"}`)
	rec.Record(context.Background(), "cases", nil, "")

	require.Equal(t, []savedRow{
		{"news", "articles missing", `{"status":"error"}`},
		{"cases", "", ""},
	}, store.rows)
}

func TestStoreRecorder_StoreFailureIsSwallowed(t *testing.T) {
	logger.Discard()

	store := &memStore{err: errors.New("db down")}
	rec := diagnostics.NewStoreRecorder(store)

	require.NotPanics(t, func() {
		rec.Record(context.Background(), "weather", errors.New("boom"), "")
	})
	require.Empty(t, store.rows)
}

func TestStoreRecorder_IgnoresCancelledContext(t *testing.T) {
	store := &memStore{}
	rec := diagnostics.NewStoreRecorder(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, "weather", errors.New("boom"), "{}")
	require.Len(t, store.rows, 1)
}
