package steam

// Tests for installation detection and user-supplied path validation.

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/example/dunaswap/internal/duna/domain"
)

func homeDir(path string) func() (string, error) {
	return func() (string, error) { return path, nil }
}

func makeInstall(t *testing.T, fs afero.Fs, root string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Join(root, "userdata", "100"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestDetect_LinuxConventionalLocation(t *testing.T) {
	fs := afero.NewMemMapFs()
	makeInstall(t, fs, "/home/u/.local/share/Steam")

	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))
	inst, err := loc.Detect()
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if inst.Root != filepath.Join("/home/u", ".local", "share", "Steam") {
		t.Errorf("Root = %q", inst.Root)
	}
	if inst.UserdataRoot != filepath.Join(inst.Root, "userdata") {
		t.Errorf("UserdataRoot = %q", inst.UserdataRoot)
	}
	if len(inst.LibraryRoots) != 1 {
		t.Errorf("LibraryRoots = %v", inst.LibraryRoots)
	}
}

func TestDetect_PriorityOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	makeInstall(t, fs, filepath.Join("/home/u", ".steam", "steam"))
	makeInstall(t, fs, filepath.Join("/home/u", ".local", "share", "Steam"))

	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))
	inst, err := loc.Detect()
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if inst.Root != filepath.Join("/home/u", ".steam", "steam") {
		t.Errorf("Root = %q, want the first candidate to win", inst.Root)
	}
}

func TestDetect_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))

	_, err := loc.Detect()
	if !errors.Is(err, domain.ErrInstallationNotFound) {
		t.Errorf("err = %v, want ErrInstallationNotFound", err)
	}
}

func TestDetect_DarwinLocation(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := filepath.Join("/Users/u", "Library", "Application Support", "Steam")
	makeInstall(t, fs, root)

	loc := NewLocatorFor(fs, "darwin", homeDir("/Users/u"))
	inst, err := loc.Detect()
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if inst.Root != root {
		t.Errorf("Root = %q", inst.Root)
	}
}

func TestValidate_InstallationRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	makeInstall(t, fs, "/opt/steam")

	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))
	inst, err := loc.Validate("/opt/steam")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if inst.UserdataRoot != filepath.Join("/opt/steam", "userdata") {
		t.Errorf("UserdataRoot = %q", inst.UserdataRoot)
	}
}

func TestValidate_UserdataDirectly(t *testing.T) {
	fs := afero.NewMemMapFs()
	makeInstall(t, fs, "/opt/steam")

	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))
	inst, err := loc.Validate(filepath.Join("/opt/steam", "userdata"))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if inst.Root != "/opt/steam" {
		t.Errorf("Root = %q", inst.Root)
	}
}

func TestValidate_UserdataWithoutAccountDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/opt/other/userdata/notnumeric", 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))
	_, err := loc.Validate("/opt/other/userdata")
	if !errors.Is(err, domain.ErrInvalidPath) {
		t.Errorf("err = %v, want ErrInvalidPath", err)
	}
}

func TestValidate_MissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))

	_, err := loc.Validate("/does/not/exist")
	if !errors.Is(err, domain.ErrInvalidPath) {
		t.Errorf("err = %v, want ErrInvalidPath", err)
	}
}

func TestValidate_DirWithoutUserdata(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/opt/plain", 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	loc := NewLocatorFor(fs, "linux", homeDir("/home/u"))
	_, err := loc.Validate("/opt/plain")
	if !errors.Is(err, domain.ErrInvalidPath) {
		t.Errorf("err = %v, want ErrInvalidPath", err)
	}
}
