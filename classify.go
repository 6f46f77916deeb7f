// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-unpack/engine"
)

// compressionExtensions are accepted in addition to the extensions of the
// engine formats.
var compressionExtensions = []string{"gz", "bz2", "lz", "xz"}

// knownExtensions is the allow-list that spares the engine obvious non-archives.
var knownExtensions = func() map[string]bool {
	m := map[string]bool{}
	for _, ext := range engine.Extensions() {
		m[ext] = true
	}
	for _, ext := range compressionExtensions {
		m[ext] = true
	}
	return m
}()

// splitExt splits the file name of path into stem and extension. Leading
// dots belong to the stem, so ".profile" has no extension.
func splitExt(path string) (string, string) {
	base := filepath.Base(path)
	trimmed := strings.TrimLeft(base, ".")
	i := strings.LastIndex(trimmed, ".")
	if i < 0 {
		return base, ""
	}
	i += len(base) - len(trimmed)
	return base[:i], base[i+1:]
}

// FileBaseName returns the file name of path without directory and without
// its last extension, e.g. "a.tar" for "dir/a.tar.gz".
func FileBaseName(path string) string {
	stem, _ := splitExt(path)
	return stem
}

// FileExtension returns the last extension of path in lower case and
// without the dot. ok is false if the file name has no extension.
func FileExtension(path string) (ext string, ok bool) {
	_, ext = splitExt(path)
	if ext == "" {
		return "", false
	}
	return strings.ToLower(ext), true
}

// IsArchive reports whether path is an archive eng can process. Files without
// a known archive extension are rejected without asking eng. Errors of eng
// mean false.
func IsArchive(eng Engine, path string) bool {
	return isArchive(eng, path, false)
}

// isArchive is [IsArchive] with the extension check turned off by sniff.
func isArchive(eng Engine, path string, sniff bool) bool {
	if !sniff {
		ext, ok := FileExtension(path)
		if !ok || !knownExtensions[ext] {
			return false
		}
	}
	f, err := eng.DetectFormat(path)
	if err != nil {
		return false
	}
	return eng.ValidateFormat(f) == nil
}
