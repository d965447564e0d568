package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// filePayload is the on-disk layout. Two string values under a fixed key,
// nothing else belongs to this file.
type filePayload struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	SavedAt      time.Time `json:"saved_at"`
}

// FileStore persists the token pair to a JSON file. Writes go through a
// temp-file rename so a crash never leaves a torn file, and a sidecar lock
// file serializes writers across processes. It backs the Permanent
// persistence class for CLI and desktop deployments.
type FileStore struct {
	path string

	mu     sync.RWMutex
	cached *filePayload
}

// NewFileStore creates a store backed by path. The file is loaded lazily;
// a missing file simply means no tokens.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) AccessToken() string {
	p := s.load()
	if p == nil {
		return ""
	}
	return p.AccessToken
}

func (s *FileStore) RefreshToken() string {
	p := s.load()
	if p == nil {
		return ""
	}
	return p.RefreshToken
}

// SetTokens writes both tokens atomically. The persistence class is ignored:
// a file store is always the durable tier.
func (s *FileStore) SetTokens(access, refresh string, _ PersistenceClass) error {
	return s.write(&filePayload{
		AccessToken:  access,
		RefreshToken: refresh,
		SavedAt:      time.Now(),
	})
}

func (s *FileStore) UpdateTokens(access, refresh string) error {
	return s.SetTokens(access, refresh, Permanent)
}

// Clear removes the token file. Clearing an already-clear store is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// load returns the current payload. The file is read once and cached;
// in-process writes refresh the cache, writes from other processes are
// picked up on the next process start.
func (s *FileStore) load() *filePayload {
	s.mu.RLock()
	if s.cached != nil {
		p := s.cached
		s.mu.RUnlock()
		return p
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var p filePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	s.cached = &p
	return s.cached
}

// write persists the payload with the atomic write pattern: marshal, write a
// temp file, rename over the old file. Writers across processes are
// serialized by the lock file.
func (s *FileStore) write(p *filePayload) error {
	lock, err := acquireFileLock(s.path)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() {
		if releaseErr := lock.release(); releaseErr != nil {
			fmt.Fprintf(os.Stderr, "failed to release lock: %v\n", releaseErr)
		}
	}()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		if removeErr := os.Remove(tempFile); removeErr != nil {
			return fmt.Errorf(
				"failed to rename temp file: %v; additionally failed to remove temp file: %w",
				err,
				removeErr,
			)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.mu.Lock()
	s.cached = p
	s.mu.Unlock()

	return nil
}
