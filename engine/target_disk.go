// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// errExists is returned by [TargetDisk] if a path is taken and may not be replaced.
var errExists = errors.New("path exists")

// TargetDisk is the [Target] of the local filesystem.
type TargetDisk struct{}

// NewTargetDisk returns a [TargetDisk].
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// taken returns errExists if path exists and replace is false. Other errors
// of Lstat are returned as they are.
func taken(path string, replace bool) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case !replace:
		return true, fmt.Errorf("%s: %w", path, errExists)
	}
	return true, nil
}

// CreateDir creates path and its parents. Existing directories are fine.
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	return nil
}

// CreateFile writes src to path, at most maxSize bytes unless maxSize < 0.
// An existing file is only truncated if overwrite is set.
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if _, err := taken(path, overwrite); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("cannot create file: %w", err)
	}
	n, err := io.Copy(limitWriter(f, maxSize), src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("cannot write file: %w", err)
	}
	return n, nil
}

// CreateSymlink creates newname pointing to oldname. An existing newname is
// only replaced if overwrite is set.
func (d *TargetDisk) CreateSymlink(oldname string, newname string, overwrite bool) error {
	exists, err := taken(newname, overwrite)
	if err != nil {
		return err
	}
	if exists {
		if err := os.Remove(newname); err != nil {
			return fmt.Errorf("cannot replace %s: %w", newname, err)
		}
	}
	if err := os.Symlink(oldname, newname); err != nil {
		return fmt.Errorf("cannot create symlink: %w", err)
	}
	return nil
}

func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }

func (d *TargetDisk) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (d *TargetDisk) Chmod(name string, mode fs.FileMode) error { return os.Chmod(name, mode.Perm()) }

func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

// Lchtimes sets the times of a symlink itself where the platform supports it
// and does nothing otherwise.
func (d *TargetDisk) Lchtimes(name string, atime, mtime time.Time) error {
	if !canMaintainSymlinkTimestamps {
		return nil
	}
	return lchtimes(name, atime, mtime)
}
