package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/s1natex/todo-GO/internal/storage"
)

var errStoreDown = errors.New("store down")

// flakyStore wraps a memory store and fails reads or writes on demand.
type flakyStore struct {
	*storage.MemoryStore
	failGet bool
	failSet bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errStoreDown
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errStoreDown
	}
	return s.MemoryStore.Set(ctx, key, value)
}

// stepClock returns a clock that moves forward one minute per call.
func stepClock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestManager(t *testing.T, store storage.Store) *Manager {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return NewManager(store, WithClock(stepClock()), WithLogger(discardLogger()))
}

func mustAdd(t *testing.T, m *Manager, text string, p Priority) Task {
	t.Helper()
	res, err := m.Add(context.Background(), text, p)
	if err != nil {
		t.Fatalf("add %q: %v", text, err)
	}
	if res.Task == nil {
		t.Fatalf("add %q: expected task in result", text)
	}
	return *res.Task
}

func ids(list []Task) []int64 {
	out := make([]int64, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}
