package token

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestFileStore_SetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path)

	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Error("Expected an empty store before the first write")
	}

	if err := s.SetTokens("access-1", "refresh-1", Permanent); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if s.AccessToken() != "access-1" || s.RefreshToken() != "refresh-1" {
		t.Errorf(
			"Expected stored pair, got access=%s refresh=%s",
			s.AccessToken(),
			s.RefreshToken(),
		)
	}

	// Verify file permissions are restrictive (owner read/write only)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat token file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected file permissions 0600, got %o", info.Mode().Perm())
	}
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	s1 := NewFileStore(path)
	if err := s1.SetTokens("access-1", "refresh-1", Permanent); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}

	// A new store instance simulates a process restart
	s2 := NewFileStore(path)
	if s2.AccessToken() != "access-1" || s2.RefreshToken() != "refresh-1" {
		t.Errorf(
			"Expected pair to survive restart, got access=%s refresh=%s",
			s2.AccessToken(),
			s2.RefreshToken(),
		)
	}
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path)

	if err := s.SetTokens("access-1", "refresh-1", Permanent); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected token file to be removed")
	}
	if s.AccessToken() != "" {
		t.Error("Expected no access token after Clear")
	}

	// Clearing again is a no-op
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on missing file failed: %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	s := NewFileStore(path)
	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Error("Expected a corrupt file to read as empty")
	}
}

func TestFileStore_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path)

	const goroutines = 10
	var wg sync.WaitGroup

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			access := fmt.Sprintf("access-%d", id)
			refresh := fmt.Sprintf("refresh-%d", id)
			if err := s.SetTokens(access, refresh, Permanent); err != nil {
				t.Errorf("Goroutine %d: SetTokens failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	// The file must hold one intact pair from a single writer, never a mix
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read token file: %v", err)
	}
	var p filePayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Failed to parse token file: %v", err)
	}
	accessID := strings.TrimPrefix(p.AccessToken, "access-")
	refreshID := strings.TrimPrefix(p.RefreshToken, "refresh-")
	if accessID != refreshID {
		t.Errorf("Torn write: access=%s refresh=%s", p.AccessToken, p.RefreshToken)
	}

	// Verify no lock files remain
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Error("Lock file still exists after all writes completed")
	}
}
