// Package steam locates the Steam installation on the current platform.
// All platform-conditional path conventions live here; every other engine
// component operates on the already-resolved Installation.
package steam

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/duna/domain"
	"github.com/example/dunaswap/internal/duna/vdf"
)

// Locator probes for or validates a Steam installation.
type Locator struct {
	fs      afero.Fs
	goos    string
	homeDir func() (string, error)
}

// NewLocator creates a Locator for the current platform.
func NewLocator(fs afero.Fs) *Locator {
	return &Locator{fs: fs, goos: runtime.GOOS, homeDir: os.UserHomeDir}
}

// NewLocatorFor creates a Locator with an explicit platform and home
// directory resolver, for tests.
func NewLocatorFor(fs afero.Fs, goos string, homeDir func() (string, error)) *Locator {
	return &Locator{fs: fs, goos: goos, homeDir: homeDir}
}

// Detect probes the platform's conventional install locations in priority
// order and returns the first containing a userdata root.
func (l *Locator) Detect() (domain.Installation, error) {
	for _, root := range l.candidates() {
		inst, err := l.fromRoot(root)
		if err == nil {
			return inst, nil
		}
	}
	return domain.Installation{}, domain.ErrInstallationNotFound
}

// Validate accepts either an installation root or the userdata directory
// itself and normalizes to a full Installation.
func (l *Locator) Validate(candidate string) (domain.Installation, error) {
	info, err := l.fs.Stat(candidate)
	if err != nil || !info.IsDir() {
		return domain.Installation{}, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidPath, candidate)
	}

	// The candidate may be the userdata directory directly.
	if filepath.Base(candidate) == "userdata" && l.hasAccountDirs(candidate) {
		return l.build(filepath.Dir(candidate), candidate), nil
	}

	if inst, err := l.fromRoot(candidate); err == nil {
		return inst, nil
	}

	return domain.Installation{}, fmt.Errorf(
		"%w: no userdata folder under %s; select the Steam folder or the userdata folder directly",
		domain.ErrInvalidPath, candidate)
}

func (l *Locator) fromRoot(root string) (domain.Installation, error) {
	userdata := filepath.Join(root, "userdata")
	info, err := l.fs.Stat(userdata)
	if err != nil || !info.IsDir() {
		return domain.Installation{}, domain.ErrInstallationNotFound
	}
	return l.build(root, userdata), nil
}

func (l *Locator) build(root, userdata string) domain.Installation {
	return domain.Installation{
		Root:         root,
		UserdataRoot: userdata,
		LibraryRoots: vdf.LibraryRoots(l.fs, root),
	}
}

// hasAccountDirs reports whether the directory contains at least one
// numeric-named subdirectory, the marker of a userdata root.
func (l *Locator) hasAccountDirs(path string) bool {
	entries, err := afero.ReadDir(l.fs, path)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() && isNumeric(entry.Name()) {
			return true
		}
	}
	return false
}

func (l *Locator) candidates() []string {
	switch l.goos {
	case "windows":
		return []string{
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		}
	case "linux":
		home, err := l.homeDir()
		if err != nil {
			return nil
		}
		return []string{
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
		}
	case "darwin":
		home, err := l.homeDir()
		if err != nil {
			return nil
		}
		return []string{
			filepath.Join(home, "Library", "Application Support", "Steam"),
		}
	default:
		return nil
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
