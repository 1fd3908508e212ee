package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessTable lists the executables of all running processes.
type ProcessTable interface {
	Executables(ctx context.Context) ([]string, error)
}

// SystemProcesses reads the OS process table.
type SystemProcesses struct{}

func (SystemProcesses) Executables(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	exes := make([]string, 0, len(procs))
	for _, p := range procs {
		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" {
			// Resolving the executable path needs more privileges than
			// reading the process name on some platforms.
			if exe, err = p.NameWithContext(ctx); err != nil {
				continue
			}
		}
		exes = append(exes, exe)
	}
	return exes, nil
}

// foldExeCase is set on platforms with case-insensitive file systems.
var foldExeCase = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// isClientProcess reports whether exe names the mail client binary. The
// base name is compared with its extension removed.
func isClientProcess(exe, name string, foldCase bool) bool {
	if exe == "" {
		return false
	}
	base := filepath.Base(exe)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if foldCase {
		return strings.EqualFold(stem, name)
	}
	return stem == name
}

func clientRunning(exes []string, name string, foldCase bool) bool {
	for _, exe := range exes {
		if isClientProcess(exe, name, foldCase) {
			return true
		}
	}
	return false
}

type presenceAction int

const (
	actionNone presenceAction = iota
	actionRefresh
	actionUnknown
)

func (a presenceAction) String() string {
	switch a {
	case actionRefresh:
		return "refresh"
	case actionUnknown:
		return "unknown"
	}
	return "none"
}

// presenceTransition decides what a presence tick does. The first tick acts
// whatever it observes.
func presenceTransition(wasRunning, running, first bool) presenceAction {
	switch {
	case wasRunning && !running:
		return actionUnknown
	case running && (first || !wasRunning):
		return actionRefresh
	}
	return actionNone
}
