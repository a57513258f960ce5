package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestStore creates a Store backed by a temporary directory. The
// directory and the database are cleaned up when the test finishes.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}
