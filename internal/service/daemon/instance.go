package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// linuxCommLimit is the length the kernel truncates process names to.
const linuxCommLimit = 15

// ErrAlreadyRunning is returned when another daemon process owns the alarms.
var ErrAlreadyRunning = errors.New("another alarm daemon is already running")

// processLister returns the running processes.
type processLister func() ([]ps.Process, error)

// ensureSingleInstance fails when another process runs the same executable.
// Two daemons on one alarms file would double-fire and overwrite each other.
func ensureSingleInstance() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	pid, err := findOtherInstance(ps.Processes, filepath.Base(self), os.Getpid(), runtime.GOOS)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if pid != 0 {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	return nil
}

// findOtherInstance returns the pid of a process named like executable other
// than selfPID, or 0 when there is none.
func findOtherInstance(list processLister, executable string, selfPID int, goos string) (int, error) {
	processList, err := list()
	if err != nil {
		return 0, err
	}

	want := processName(executable, goos)

	for _, process := range processList {
		if process.Pid() == selfPID {
			continue
		}

		if processName(process.Executable(), goos) == want {
			return process.Pid(), nil
		}
	}

	return 0, nil
}

// processName normalizes an executable name the way the OS reports it.
func processName(name, goos string) string {
	switch goos {
	case "windows":
		return strings.ToLower(name)
	case "linux":
		if len(name) > linuxCommLimit {
			return name[:linuxCommLimit]
		}
	}

	return name
}
