// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/store"
)

// NewTestStore creates an in-memory SQLite store for testing.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", zap.NewNop(), opts...)
	require.NoError(t, err, "creating test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// WithFixedClock pins the store's clock to t.
func WithFixedClock(t time.Time) store.Option {
	return store.WithClock(func() time.Time { return t })
}
