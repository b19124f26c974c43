package lifecycle

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func requirePgrep(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("pgrep"); err != nil {
		t.Skip("pgrep not available in this environment")
	}
}

func TestHasPeerExcludesSelf(t *testing.T) {
	requirePgrep(t)

	self := filepath.Base(os.Args[0])
	tr := &Tracker{ProcessNamePattern: self, SelfPID: os.Getpid()}
	if tr.HasPeer() {
		t.Errorf("expected HasPeer() to ignore the calling process %q itself", self)
	}
}

func TestHasPeerUnknownPatternReturnsFalse(t *testing.T) {
	requirePgrep(t)

	tr := &Tracker{ProcessNamePattern: "definitely-not-a-running-process-abcxyz", SelfPID: 1}
	if tr.HasPeer() {
		t.Error("expected HasPeer() to be false when pgrep finds nothing")
	}
}

func TestStopIfNoPeersStopsOnlyAfterFullQuietWindow(t *testing.T) {
	dir := t.TempDir()
	c := &Controller{StateDir: dir, Addr: "127.0.0.1:0", Port: 1}

	calls := 0
	hasPeer := func() bool {
		calls++
		return false
	}

	const pollInterval = 10 * time.Millisecond
	const stopGrace = 100 * time.Millisecond
	wantTicks := int(stopGrace / pollInterval)

	err := c.StopIfNoPeers(hasPeer, pollInterval, stopGrace)
	if err != nil {
		t.Fatalf("StopIfNoPeers() error: %v", err)
	}
	if calls != wantTicks {
		t.Errorf("hasPeer polled %d times, want the full %d-tick window before stopping", calls, wantTicks)
	}
}

func TestStopIfNoPeersAbortsOnAnyPeerReading(t *testing.T) {
	dir := t.TempDir()
	c := &Controller{StateDir: dir, Addr: "127.0.0.1:0", Port: 1}

	calls := 0
	hasPeer := func() bool {
		calls++
		return calls == 3
	}

	err := c.StopIfNoPeers(hasPeer, 10*time.Millisecond, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("StopIfNoPeers() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected StopIfNoPeers to abort immediately on the true reading (call 3), got %d calls", calls)
	}
}
