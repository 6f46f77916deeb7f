// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
)

// Kind classifies why an engine operation failed.
type Kind int

const (
	// KindUnknown is used for failures that do not fit any other kind.
	KindUnknown Kind = iota

	// KindUnknownFormat is returned when the format of a file cannot be detected.
	KindUnknownFormat

	// KindFormat is returned when a detected format is not usable, e.g. because
	// the program that handles it is missing.
	KindFormat

	// KindWrongPassword is returned when an archive needs a password and the
	// provided one (or none) does not decrypt it.
	KindWrongPassword

	// KindPasswordUnsupported is returned when a password is provided for a
	// format that has no notion of passwords.
	KindPasswordUnsupported

	// KindCorrupt is returned when the archive content cannot be read.
	KindCorrupt

	// KindProgram is returned when an external program failed.
	KindProgram

	// KindLimit is returned when a configured limit is exceeded.
	KindLimit

	// KindTarget is returned when writing to the destination failed.
	KindTarget
)

// String returns a short name for k.
func (k Kind) String() string {
	switch k {
	case KindUnknownFormat:
		return "unknown format"
	case KindFormat:
		return "format"
	case KindWrongPassword:
		return "wrong password"
	case KindPasswordUnsupported:
		return "password unsupported"
	case KindCorrupt:
		return "corrupt"
	case KindProgram:
		return "program"
	case KindLimit:
		return "limit"
	case KindTarget:
		return "target"
	default:
		return "unknown"
	}
}

var (
	// ErrMaxFilesExceeded indicates that the maximum number of files is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded indicates that the input is larger than allowed.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")

	// ErrProgramMissing indicates that the program for a format is not installed.
	ErrProgramMissing = errors.New("program not found")

	// ErrProgram indicates that an external program exited unsuccessfully.
	ErrProgram = errors.New("program error")
)

// Error is the error type returned by all [Engine] operations.
type Error struct {
	// Op is the operation, e.g. "detect", "test" or "extract".
	Op string

	// Path is the archive path the operation was performed on.
	Path string

	// Kind classifies the failure.
	Kind Kind

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, or any error it wraps, is an [*Error] of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}

// newError returns an [*Error]. If err already is an [*Error], its kind is kept.
func newError(op, path string, kind Kind, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Op: op, Path: path, Kind: e.Kind, Err: e.Err}
	}
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}
