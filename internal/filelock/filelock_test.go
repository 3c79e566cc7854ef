package filelock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestWriteOnce verifies the happy path and the never-overwrite contract.
func TestWriteOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "run.json")

	if err := WriteOnce(path, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("WriteOnce() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("content = %q, want original payload", data)
	}

	err = WriteOnce(path, []byte(`{"a":2}`))
	if err == nil {
		t.Fatal("WriteOnce() overwrote an existing artifact")
	}
	if !errors.Is(err, ErrArtifactExists) {
		t.Errorf("error = %v, want ErrArtifactExists", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `{"a":1}` {
		t.Errorf("content = %q, original payload must survive", data)
	}
}

// TestWriteOnceCleansLock verifies no lock file lingers after the write.
func TestWriteOnceCleansLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")

	if err := WriteOnce(path, []byte("x")); err != nil {
		t.Fatalf("WriteOnce() error = %v", err)
	}
	if _, err := os.Lstat(path + ".lock"); !os.IsNotExist(err) {
		t.Error("lock file left behind")
	}
}

// TestLockUnlock exercises the plain lock wrapper.
func TestLockUnlock(t *testing.T) {
	lock := New(filepath.Join(t.TempDir(), "x.lock"))
	if err := lock.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}
