// Package procguard detects whether selected games are currently running.
// The signal is advisory: callers use it to warn before a swap, never to
// hard-block one, and any enumeration failure degrades to "not running".
package procguard

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/duna/domain"
	"github.com/example/dunaswap/internal/duna/vdf"
)

// ProcessInfo is the subset of a running process the guard matches against.
type ProcessInfo struct {
	Name string
	Exe  string
}

// Lister enumerates running processes. The gopsutil-backed implementation
// lives in lister.go; tests substitute a fake.
type Lister interface {
	Processes(ctx context.Context) ([]ProcessInfo, error)
}

// Guard answers whether any selected game has a running process.
type Guard struct {
	fs     afero.Fs
	lister Lister
	logger *slog.Logger
}

// New creates a Guard using the platform process lister.
func New(fs afero.Fs, logger *slog.Logger) *Guard {
	return NewWithLister(fs, newSystemLister(), logger)
}

// NewWithLister creates a Guard with an explicit process lister.
func NewWithLister(fs afero.Fs, lister Lister, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Guard{fs: fs, lister: lister, logger: logger}
}

// IsAnyRunning reports whether a process belonging to any of the selected
// games is active. A game's processes are recognized by their executable
// path passing through steamapps/common/<installdir>, with installdir taken
// from the game's library manifest. Games without a resolvable installdir
// are skipped. Enumeration failure yields false, never an error.
func (g *Guard) IsAnyRunning(ctx context.Context, inst domain.Installation, gameIDs []string) bool {
	if len(gameIDs) == 0 {
		return false
	}

	var tokens []string
	for _, gameID := range gameIDs {
		dir, ok := vdf.InstallDir(g.fs, inst.LibraryRoots, gameID)
		if !ok {
			continue
		}
		tokens = append(tokens, strings.ToLower("steamapps/common/"+dir+"/"))
	}
	if len(tokens) == 0 {
		return false
	}

	procs, err := g.lister.Processes(ctx)
	if err != nil {
		g.logger.Debug("process enumeration failed", "error", err)
		return false
	}

	for _, proc := range procs {
		exe := strings.ToLower(strings.ReplaceAll(proc.Exe, `\`, "/"))
		for _, token := range tokens {
			if exe != "" && strings.Contains(exe, token) {
				g.logger.Debug("running game process found", "name", proc.Name, "exe", proc.Exe)
				return true
			}
		}
	}
	return false
}
