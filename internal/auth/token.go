// Package auth owns the bearer token: where it is stored and
// the browser login flow that obtains it.
package auth

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	// Get returns the stored token, or "" when none is stored.
	Get() (string, error)
	// Store overwrites the token.
	Store(token string) error
	// Clear removes the token. Clearing an absent token is not
	// an error.
	Clear() error
	// Has reports whether a non-empty token is stored.
	Has() bool
}

// FileTokenStore keeps the token in a single file, readable
// only by the owner.
type FileTokenStore struct {
	fs   afero.Fs
	path string
}

// NewFileTokenStore returns a store backed by the given path,
// conventionally <data dir>/token.
func NewFileTokenStore(fs afero.Fs, path string) *FileTokenStore {
	return &FileTokenStore{fs: fs, path: path}
}

func (s *FileTokenStore) Get() (string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path); !exists {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Store(token string) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := afero.WriteFile(
		s.fs, s.path, []byte(token), 0o600,
	); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path); !exists {
			return nil
		}
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Has() bool {
	token, err := s.Get()
	return err == nil && token != ""
}

// MemoryTokenStore holds the token in memory. Used in tests and
// as the stand-in for host-provided secret vaults.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Store(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Store("")
}

func (s *MemoryTokenStore) Has() bool {
	token, _ := s.Get()
	return token != ""
}
