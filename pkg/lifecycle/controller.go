package lifecycle

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// Controller drives the singleton start/stop protocol against one state
// directory, per spec.md §4.9 (C9).
type Controller struct {
	StateDir string
	Addr     string
	Port     int
}

// pidPath is the state directory's PID file, per spec.md §6's state
// directory layout.
func (c *Controller) pidPath() string {
	return filepath.Join(c.StateDir, "proxy.pid")
}

// logPath is the state directory's append-only child log, per spec.md §6's
// state directory layout.
func (c *Controller) logPath() string {
	return filepath.Join(c.StateDir, "proxy.log")
}

// Start ensures exactly one proxy process is listening on c.Addr. If one is
// already running and owns the port, Start returns immediately. Otherwise
// it spawns a detached child via spawn, waits up to startWait for the port
// to come up, and records its PID. Concurrent Start calls against the same
// StateDir are serialized by AcquireLock; a caller that loses the race waits
// out the same startWait window for the winner's spawn to finish binding
// instead of returning early — testable property 9 requires exactly one
// spawn and both callers returning successfully once the port is listening.
func (c *Controller) Start(spawn func() (*exec.Cmd, error), startWait time.Duration) error {
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("lifecycle: create state dir: %w", err)
	}

	lock, err := AcquireLock(c.StateDir, c.pidPath(), c.Port)
	if err != nil {
		if err == ErrLockHeld {
			if !WaitForListening(c.Addr, startWait) {
				return fmt.Errorf("lifecycle: %s did not open within %s (see %s)", c.Addr, startWait, c.logPath())
			}
			return nil
		}
		return fmt.Errorf("lifecycle: acquire lock: %w", err)
	}
	defer lock.Release()

	if pid, _ := ReadPID(c.pidPath()); pid != 0 && OwnsPort(pid, c.Port) {
		return nil
	}

	cmd, err := spawn()
	if err != nil {
		return fmt.Errorf("lifecycle: spawn: %w", err)
	}

	if !WaitForListening(c.Addr, startWait) {
		return fmt.Errorf("lifecycle: spawned process did not open %s within %s (see %s)", c.Addr, startWait, c.logPath())
	}

	if err := WritePID(c.pidPath(), cmd.Process.Pid); err != nil {
		return fmt.Errorf("lifecycle: write pid file: %w", err)
	}
	return nil
}

// Stop sends SIGTERM to the recorded process and, if it does not exit
// within stopGrace, escalates to SIGKILL. It refuses to signal a PID that
// does not currently own c.Port — testable property 10 — since the
// recorded PID may have been reused by an unrelated process since it was
// written.
func (c *Controller) Stop(stopGrace time.Duration) error {
	pid, err := ReadPID(c.pidPath())
	if err != nil {
		return err
	}
	if pid == 0 {
		return nil
	}
	if !OwnsPort(pid, c.Port) {
		return RemovePID(c.pidPath())
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("lifecycle: signal TERM: %w", err)
	}

	const pollInterval = 100 * time.Millisecond
	elapsed := time.Duration(0)
	for elapsed < stopGrace {
		if !OwnsPort(pid, c.Port) {
			return RemovePID(c.pidPath())
		}
		time.Sleep(pollInterval)
		elapsed += pollInterval
	}

	if err := process.Kill(); err != nil {
		return fmt.Errorf("lifecycle: signal KILL: %w", err)
	}
	return RemovePID(c.pidPath())
}

// StopIfNoPeers polls hasPeer at pollInterval across the full stopGrace
// window and calls Stop only if every tick in that window reads false — a
// sibling CLI invocation that briefly vanishes for one tick and reappears
// must not trigger a shutdown. Any true reading aborts immediately and
// StopIfNoPeers returns nil without stopping. hasPeer is supplied by the
// caller (the wrapper process tracker, C10) since peer discovery is specific
// to how the wrapper enumerates sibling invocations.
func (c *Controller) StopIfNoPeers(hasPeer func() bool, pollInterval, stopGrace time.Duration) error {
	ticks := int(stopGrace / pollInterval)
	if ticks < 1 {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		if hasPeer() {
			return nil
		}
		if i < ticks-1 {
			time.Sleep(pollInterval)
		}
	}
	return c.Stop(stopGrace)
}
