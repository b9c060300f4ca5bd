// Package storage provides the low-level filesystem operations of the swap
// engine: directory enumeration, recursive copy, and mirror replacement.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Storage wraps an afero filesystem with the tree-level primitives used by
// the catalog, stats, and swap components.
type Storage struct {
	fs afero.Fs
}

// New creates a new Storage instance.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// FileSystem returns the underlying filesystem.
func (s *Storage) FileSystem() afero.Fs {
	return s.fs
}

// DirExists reports whether path exists and is a directory.
func (s *Storage) DirExists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && info.IsDir()
}

// ValidatePathSafety checks that the path is not a symlink, preventing
// symlink attacks. Returns nil if the path doesn't exist or is a regular
// file/directory.
func (s *Storage) ValidatePathSafety(path string) error {
	if lstater, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to check path: %w", err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to operate on symlink: %s", path)
		}
	}
	return nil
}

// Subdirs returns the immediate subdirectories of path in name order.
// Symlinked entries are excluded.
func (s *Storage) Subdirs(path string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return nil, err
	}
	var dirs []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() && entry.Mode()&os.ModeSymlink == 0 {
			dirs = append(dirs, entry)
		}
	}
	return dirs, nil
}

// CopyTree recursively copies the directory tree at src into dst, creating
// dst if needed. Existing files under dst are overwritten; files present
// only under dst are left alone (use MirrorTree for replace semantics).
// Symlinks under src are refused rather than followed.
func (s *Storage) CopyTree(src, dst string) error {
	if err := s.ValidatePathSafety(src); err != nil {
		return fmt.Errorf("validate source: %w", err)
	}
	info, err := s.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}
	if err := s.fs.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	entries, err := afero.ReadDir(s.fs, src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := s.CopyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := s.copyFile(srcPath, dstPath, entry.Mode()); err != nil {
			return err
		}
	}
	return nil
}

// MirrorTree makes dst an exact replica of the tree at src: the previous
// contents of dst are removed entirely before copying, so files present
// only under the old dst do not survive.
func (s *Storage) MirrorTree(src, dst string) error {
	if err := s.fs.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear destination: %w", err)
	}
	return s.CopyTree(src, dst)
}

// RemoveAll removes path and everything below it.
func (s *Storage) RemoveAll(path string) error {
	return s.fs.RemoveAll(path)
}

// MkdirAll creates the directory and any missing parents.
func (s *Storage) MkdirAll(path string) error {
	return s.fs.MkdirAll(path, 0o755)
}

// Exists checks if a path exists.
func (s *Storage) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Stat returns file information.
func (s *Storage) Stat(path string) (os.FileInfo, error) {
	return s.fs.Stat(path)
}

// Walk traverses the tree rooted at path without following symlinks.
func (s *Storage) Walk(path string, fn filepath.WalkFunc) error {
	return afero.Walk(s.fs, path, fn)
}

func (s *Storage) copyFile(src, dst string, mode os.FileMode) (err error) {
	if err := s.ValidatePathSafety(src); err != nil {
		return fmt.Errorf("validate source: %w", err)
	}

	source, err := s.fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if cerr := source.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close source: %w", cerr)
		}
	}()

	dest, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	_, copyErr := io.Copy(dest, source)
	closeErr := dest.Close()

	if copyErr != nil {
		s.fs.Remove(dst)
		return fmt.Errorf("copy data: %w", copyErr)
	}
	if closeErr != nil {
		s.fs.Remove(dst)
		return fmt.Errorf("close destination: %w", closeErr)
	}
	return nil
}
