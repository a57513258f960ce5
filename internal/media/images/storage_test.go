package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := NewStorage(t.TempDir(), "categories", "/media")
	require.NoError(t, err)
	return s
}

func TestStorage_SaveAndGet(t *testing.T) {
	s := setupTestStorage(t)

	data := []byte("fake jpeg bytes")
	require.NoError(t, s.Save("local-businesses", data))

	got, err := s.Get("local-businesses")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.True(t, s.Exists("local-businesses"))
}

func TestStorage_Save_Invalid(t *testing.T) {
	s := setupTestStorage(t)

	assert.Error(t, s.Save("", []byte("data")))
	assert.Error(t, s.Save("id", nil))
}

func TestStorage_Get_Missing(t *testing.T) {
	s := setupTestStorage(t)

	_, err := s.Get("missing")
	assert.Error(t, err)
	assert.False(t, s.Exists("missing"))
}

func TestStorage_Delete_Idempotent(t *testing.T) {
	s := setupTestStorage(t)

	require.NoError(t, s.Save("local-businesses", []byte("data")))
	require.NoError(t, s.Delete("local-businesses"))
	assert.False(t, s.Exists("local-businesses"))

	// Deleting again is not an error.
	assert.NoError(t, s.Delete("local-businesses"))
}

func TestStorage_Hash(t *testing.T) {
	s := setupTestStorage(t)

	require.NoError(t, s.Save("local-businesses", []byte("data")))

	hash, err := s.Hash("local-businesses")
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}

func TestStorage_URLs(t *testing.T) {
	s := setupTestStorage(t)

	assert.Equal(t, "/media/categories/local-businesses.jpg", s.URL("local-businesses"))
	assert.Equal(t, "/media/categories/file-abc.pdf", s.FileURL("file-abc.pdf"))
}

func TestStorage_SaveFile(t *testing.T) {
	s := setupTestStorage(t)

	require.NoError(t, s.SaveFile("file-abc.pdf", []byte("%PDF-1.4")))

	// Path traversal in filenames is rejected outright.
	assert.Error(t, s.SaveFile("../escape.pdf", []byte("data")))
	assert.Error(t, s.SaveFile("", []byte("data")))
}
