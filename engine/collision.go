// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Collision is the policy applied when a path that should be created already exists.
type Collision int

const (
	// CollisionRename picks a fresh name by appending "_<n>".
	CollisionRename Collision = iota

	// CollisionOverwrite replaces the existing entry.
	CollisionOverwrite

	// CollisionSkip keeps the existing entry and does not write.
	CollisionSkip
)

// ErrInvalidCollision is returned by [ParseCollision] for unknown names.
var ErrInvalidCollision = errors.New("invalid collision policy")

// String returns the name of the policy as accepted by [ParseCollision].
func (c Collision) String() string {
	switch c {
	case CollisionRename:
		return "rename"
	case CollisionOverwrite:
		return "overwrite"
	case CollisionSkip:
		return "skip"
	default:
		return fmt.Sprintf("collision(%d)", int(c))
	}
}

// ParseCollision parses "rename", "overwrite" or "skip".
func ParseCollision(s string) (Collision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rename":
		return CollisionRename, nil
	case "overwrite":
		return CollisionOverwrite, nil
	case "skip":
		return CollisionSkip, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCollision, s)
}

// resolveEntryName applies policy to the entry name inside dst. It returns the
// name to write to, whether an existing entry must be overwritten and whether
// the entry should be written at all.
func resolveEntryName(t Target, dst string, name string, policy Collision) (string, bool, bool, error) {
	_, err := t.Lstat(filepath.Join(dst, name))

	// check if name is free
	if errors.Is(err, fs.ErrNotExist) {
		return name, false, true, nil
	}
	if err != nil {
		return "", false, false, fmt.Errorf("invalid path: %w", err)
	}

	switch policy {
	case CollisionOverwrite:
		return name, true, true, nil
	case CollisionSkip:
		return "", false, false, nil
	}

	// rename: name_1.ext, name_2.ext, ...
	dir, base := filepath.Split(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if _, err := t.Lstat(filepath.Join(dst, candidate)); errors.Is(err, fs.ErrNotExist) {
			return candidate, false, true, nil
		} else if err != nil {
			return "", false, false, fmt.Errorf("invalid path: %w", err)
		}
	}
}
