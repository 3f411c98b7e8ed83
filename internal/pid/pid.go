package pid

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/gmichels/selenium-grid-exporter/internal/errors"
)

// Write writes the current process ID to path. It refuses to overwrite a
// PID file whose process is still alive.
func Write(path string) error {
	errFactory := errors.New()

	if path == "" {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "empty PID file path")
	}

	running, err := isRunning(path)
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}
	if running {
		return errFactory.WithData(errors.ErrAlreadyRunning, path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file. A missing file is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

// isRunning reports whether path holds the PID of a live process other
// than this one. Stale or unreadable contents count as not running.
func isRunning(path string) (bool, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return false, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, nil
	}

	return process.Signal(syscall.Signal(0)) == nil, nil
}
