package token

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	lock, err := acquireFileLock(path)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := path + ".lock"
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file was not created")
	}

	if err := lock.release(); err != nil {
		t.Errorf("Failed to release lock: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file was not removed after release")
	}
}

func TestFileLock_StaleLockBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	lockPath := path + ".lock"

	// Simulate a lock left behind by a crashed process
	if err := os.WriteFile(lockPath, []byte("99999"), 0o600); err != nil {
		t.Fatalf("Failed to create stale lock: %v", err)
	}
	staleTime := time.Now().Add(-2 * lockStaleAfter)
	if err := os.Chtimes(lockPath, staleTime, staleTime); err != nil {
		t.Fatalf("Failed to age lock file: %v", err)
	}

	lock, err := acquireFileLock(path)
	if err != nil {
		t.Fatalf("Expected stale lock to be broken, got: %v", err)
	}
	if err := lock.release(); err != nil {
		t.Errorf("Failed to release lock: %v", err)
	}
}

func TestFileLock_WaitsForHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	lock1, err := acquireFileLock(path)
	if err != nil {
		t.Fatalf("Failed to acquire first lock: %v", err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(2 * lockRetryDelay)
		close(released)
		if err := lock1.release(); err != nil {
			t.Errorf("Failed to release first lock: %v", err)
		}
	}()

	lock2, err := acquireFileLock(path)
	if err != nil {
		t.Fatalf("Failed to acquire second lock: %v", err)
	}
	select {
	case <-released:
	default:
		t.Error("Second acquire succeeded while the first lock was still held")
	}
	if err := lock2.release(); err != nil {
		t.Errorf("Failed to release second lock: %v", err)
	}
}
