package lifecycle

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadPID reads and parses the PID recorded at path. A missing file is not
// an error — it reports (0, nil), matching "no prior instance recorded".
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// WritePID atomically records pid at path: written to a temp file in the
// same directory, then renamed, so a crash mid-write never leaves a
// half-written pid file for the next start to misread.
func WritePID(path string, pid int) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RemovePID deletes the pid file, tolerating its absence.
func RemovePID(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
