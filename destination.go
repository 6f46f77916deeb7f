// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-unpack/engine"
)

// CollisionPolicy is applied if a destination directory already exists. The
// engine applies the same policy to files that exist inside the destination.
type CollisionPolicy = engine.Collision

const (
	// CollisionRename picks the first free name out of "<dir>_1", "<dir>_2", ...
	CollisionRename = engine.CollisionRename

	// CollisionOverwrite removes the existing, empty, directory.
	CollisionOverwrite = engine.CollisionOverwrite

	// CollisionSkip does not extract the archive.
	CollisionSkip = engine.CollisionSkip
)

// ParseCollisionPolicy parses "rename", "overwrite" or "skip".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	p, err := engine.ParseCollision(s)
	if err != nil {
		return 0, fmt.Errorf("%w: collision %q", ErrInvalidPolicy, s)
	}
	return p, nil
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}

// DefaultTarget returns the directory the archive at path is extracted to if
// nothing is in the way: the archive's directory joined with its base name.
// A file without extension would be its own target, so "_unpacked" is
// appended to its name instead.
func DefaultTarget(path string) string {
	name := FileBaseName(path)
	if name == filepath.Base(path) {
		name += "_unpacked"
	}
	return filepath.Join(filepath.Dir(path), name)
}

// ResolveTarget returns the directory an archive is extracted to, given the
// desired directory. If desired is not an existing directory, it is returned
// unchanged. Otherwise policy decides: skip returns [ErrAbort], overwrite
// removes desired, which must be empty, and rename returns the first of
// "<desired>_1", "<desired>_2", ... that is not an existing directory.
func ResolveTarget(desired string, policy CollisionPolicy) (string, error) {
	if !isDir(desired) {
		return desired, nil
	}

	switch policy {
	case CollisionSkip:
		return "", ErrAbort
	case CollisionOverwrite:
		if err := os.Remove(desired); err != nil {
			return "", fmt.Errorf("cannot remove existing destination: %w", err)
		}
		return desired, nil
	case CollisionRename:
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("%s_%d", desired, n)
			if !isDir(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: collision %d", ErrInvalidPolicy, int(policy))
}

// isAbort reports whether err asks to skip the archive.
func isAbort(err error) bool {
	return errors.Is(err, ErrAbort)
}
