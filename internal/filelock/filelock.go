// Package filelock provides file locking and write-once atomic persistence
// for audit artifacts shared across processes.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrArtifactExists reports a write-once path that already holds an
// artifact. Callers treat it as "already persisted", not as a fault.
var ErrArtifactExists = errors.New("artifact already exists")

// FileLock wraps a flock lock coordinating access to a path.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock for the given path. The lock file is created on first
// acquisition.
func New(path string) *FileLock {
	return &FileLock{flock: flock.New(path), path: path}
}

// Lock blocks until the exclusive lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// WriteOnce atomically writes data to a path that must not already exist.
// The write goes to a temp file in the target directory and is renamed into
// place, so readers never observe a partial artifact; an existing file is an
// error, never overwritten. This is the persistence primitive for
// append-only audit artifacts.
func WriteOnce(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrArtifactExists, path)
	}

	lock := New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() {
		lock.Unlock()
		os.Remove(path + ".lock")
	}()

	// Re-check under the lock: a concurrent writer may have won.
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrArtifactExists, path)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to place artifact: %w", err)
	}
	return nil
}
