// Package kv is the persistence boundary: a byte-string store addressed by
// key. The donation collection lives under a single fixed key; the store
// treats this mirror as best effort and never as authoritative.
package kv

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// FileStore keeps one file per key under a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// MemStore is an in-memory Store for tests and ephemeral runs.
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// SetErr, when non-nil, is returned by every Set. Lets tests exercise
	// the swallow-persistence-failures policy.
	SetErr error
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}
	out := make([]byte, len(value))
	copy(out, value)
	s.data[key] = out
	return nil
}
