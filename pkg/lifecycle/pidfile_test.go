package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadPIDMissingFileReturnsZero(t *testing.T) {
	pid, err := ReadPID(filepath.Join(t.TempDir(), "absent.pid"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pid != 0 {
		t.Errorf("pid = %d, want 0", pid)
	}
}

func TestWriteAndReadPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.pid")
	if err := WritePID(path, 4242); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}
	pid, err := ReadPID(path)
	if err != nil {
		t.Fatalf("ReadPID() error: %v", err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}
}

func TestReadPIDMalformedContentsIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.pid")
	if err := WritePID(path, 1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	// Overwrite with garbage directly (bypassing WritePID's atomic rename).
	if err := os.WriteFile(path, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := ReadPID(path); err == nil {
		t.Error("expected an error for malformed pid file contents")
	}
}

func TestRemovePIDToleratesAbsence(t *testing.T) {
	if err := RemovePID(filepath.Join(t.TempDir(), "absent.pid")); err != nil {
		t.Errorf("RemovePID() on absent file returned error: %v", err)
	}
}
