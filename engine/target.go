// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Target specifies all function that are needed to be implemented to extract contents from an archive
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned.
	// The size of the file should not exceed maxSize. The number of bytes written is returned, also in case of
	// an error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates at the specified path with the specified mode. If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and overwrite is false,
	// the function returns an error.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat. Main purpose is to check for symlinks in the extraction path
	// and for zip-slip attacks.
	Lstat(path string) (fs.FileInfo, error)

	// Stat see docs for os.Stat.
	Stat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the times of a symlink itself. Targets that cannot do this return nil.
	Lchtimes(name string, atime, mtime time.Time) error
}

// errUnsafePath is wrapped by all path checks of the engine.
var errUnsafePath = errors.New("unsafe path")

// entryPath converts an archive entry name into a platform specific relative path.
func entryPath(name string) string {
	return filepath.Join(strings.Split(strings.ReplaceAll(name, "\\", "/"), "/")...)
}

// createFile writes src as entry name below dst. Parent directories are
// created as needed.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64, cfg *Config) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: entry without name", errUnsafePath)
	}
	name = entryPath(name)

	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return 0, err
	}
	// the file itself may be an existing symlink
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return 0, err
	}
	return t.CreateFile(filepath.Join(dst, name), src, mode, overwrite, maxSize)
}

// createDir creates the directory entry name below dst.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	name = entryPath(name)
	if name == "." || name == "" {
		return nil
	}
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return err
	}
	return t.CreateDir(filepath.Join(dst, name), mode)
}

// createSymlink creates the symlink entry name below dst. The link target
// must be relative and stay inside dst.
func createSymlink(t Target, dst string, name string, linkTarget string, overwrite bool, cfg *Config) error {
	switch {
	case cfg.DenySymlinkExtraction():
		return fmt.Errorf("%w: symlinks are denied", errUnsafePath)
	case name == "":
		return fmt.Errorf("%w: entry without name", errUnsafePath)
	case filepath.IsAbs(linkTarget):
		return fmt.Errorf("%w: absolute link target %s", errUnsafePath, linkTarget)
	}
	name = entryPath(name)

	dir := filepath.Dir(name)
	if err := createDir(t, dst, dir, cfg.CustomCreateDirMode(), cfg); err != nil {
		return err
	}
	if err := securityCheck(t, dst, filepath.Join(dir, linkTarget), cfg); err != nil {
		return fmt.Errorf("link target: %w", err)
	}
	return t.CreateSymlink(linkTarget, filepath.Join(dst, name), overwrite)
}

// securityCheck fails if path leaves dst or, unless cfg.TraverseSymlinks(),
// passes through an existing symlink. path is relative to dst.
func securityCheck(t Target, dst string, path string, cfg *Config) error {
	if dst == "" && filepath.IsAbs(path) {
		return fmt.Errorf("%w: absolute path %s", errUnsafePath, path)
	}

	rel, err := filepath.Rel(dst, filepath.Join(dst, entryPath(path)))
	if err != nil {
		return fmt.Errorf("%w: %w", errUnsafePath, err)
	}
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %s leaves the destination", errUnsafePath, path)
	}

	// walk down the existing part of the path
	cur := dst
	for _, elem := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, elem)
		info, err := t.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		if !cfg.TraverseSymlinks() {
			return fmt.Errorf("%w: symlink %s in path", errUnsafePath, cur)
		}
		cfg.Logger().Warn("traverse symlink", "path", cur)
	}
	return nil
}
