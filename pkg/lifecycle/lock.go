package lifecycle

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrLockHeld is returned by AcquireLock when another live process holds
// the lock directory.
var ErrLockHeld = errors.New("lifecycle: lock held by another process")

// Lock represents exclusive ownership of a state directory's lock
// subdirectory, acquired via the atomicity of os.Mkdir: exactly one
// concurrent caller observes a nil error.
type Lock struct {
	dir string
}

// AcquireLock attempts to atomically create the lock directory under
// stateDir. If the directory already exists, it checks whether the PID
// recorded in pidPath still owns port; if not, the lock is stale and is
// removed before a single retry, per spec.md's stale-lock recovery
// protocol. A lock held by a live, port-owning process yields ErrLockHeld.
func AcquireLock(stateDir, pidPath string, port int) (*Lock, error) {
	lockDir := filepath.Join(stateDir, "lock")

	if err := os.Mkdir(lockDir, 0o755); err == nil {
		return &Lock{dir: lockDir}, nil
	} else if !os.IsExist(err) {
		return nil, err
	}

	if isStale(pidPath, port) {
		if err := os.RemoveAll(lockDir); err != nil {
			return nil, err
		}
		if err := os.Mkdir(lockDir, 0o755); err != nil {
			return nil, err
		}
		return &Lock{dir: lockDir}, nil
	}

	return nil, ErrLockHeld
}

// isStale reports whether the lock's recorded owner is no longer actually
// listening on port — the signal that a prior instance crashed without
// cleaning up. A missing or unreadable pid file is NOT treated as stale:
// that shape also describes a live competing Start() between mkdir and its
// own WritePID, and recovering it here would let two concurrent Start()
// calls both spawn a child, violating the single-spawn guarantee.
func isStale(pidPath string, port int) bool {
	pid, err := ReadPID(pidPath)
	if err != nil || pid == 0 {
		return false
	}
	return !OwnsPort(pid, port)
}

// Release removes the lock directory, making the state directory available
// to the next start/stop call.
func (l *Lock) Release() error {
	return os.RemoveAll(l.dir)
}
