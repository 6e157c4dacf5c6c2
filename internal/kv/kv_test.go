package kv

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("donations", []byte(`[{"id":"m1"}]`)))

	got, err := s.Get("donations")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"m1"}]`), got)

	// overwrite
	require.NoError(t, s.Set("donations", []byte("[]")))
	got, err = s.Get("donations")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), got)

	// no stray temp file left behind
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte("v")))
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	_, err := s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("k", []byte("v1")))
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// returned slice is a copy
	got[0] = 'x'
	again, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), again)

	s.SetErr = errors.New("full")
	assert.Error(t, s.Set("k", []byte("v2")))
	unchanged, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), unchanged)
}
