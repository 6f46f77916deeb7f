// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"io"
	"io/fs"
	"time"
)

// archiveWalker is an interface that represents a file walker in an archive
type archiveWalker interface {
	Type() string
	Next() (archiveEntry, error)
}

// archiveEntry is an interface that represents a file in an archive
type archiveEntry interface {
	AccessTime() time.Time
	Encrypted() bool
	IsRegular() bool
	IsDir() bool
	IsSymlink() bool
	Linkname() string
	Mode() fs.FileMode
	ModTime() time.Time
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
}

// passwordErrorChecker is implemented by walkers whose library reports
// password problems with dedicated errors.
type passwordErrorChecker interface {
	isPasswordError(err error) bool
}

// classifyReadError decides whether err, raised while reading ae from w, is
// caused by a missing or wrong password or by damaged content.
func classifyReadError(w archiveWalker, ae archiveEntry, err error) Kind {
	if pc, ok := w.(passwordErrorChecker); ok && pc.isPasswordError(err) {
		return KindWrongPassword
	}
	if ae != nil && ae.Encrypted() {
		return KindWrongPassword
	}
	return KindCorrupt
}
