// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestNewErrorKeepsKind(t *testing.T) {
	inner := &Error{Kind: KindWrongPassword, Err: io.ErrUnexpectedEOF}
	err := newError("test", "a.zip", KindCorrupt, fmt.Errorf("wrapped: %w", inner))

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("newError() = %T, want *Error", err)
	}
	if e.Kind != KindWrongPassword {
		t.Errorf("Kind = %v, want %v", e.Kind, KindWrongPassword)
	}
	if e.Op != "test" || e.Path != "a.zip" {
		t.Errorf("Op, Path = %q, %q, want %q, %q", e.Op, e.Path, "test", "a.zip")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("errors.Is(%v, io.ErrUnexpectedEOF) = false", err)
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", &Error{Op: "extract", Kind: KindLimit, Err: ErrMaxFilesExceeded})
	if !IsKind(err, KindLimit) {
		t.Errorf("IsKind(%v, KindLimit) = false", err)
	}
	if IsKind(err, KindCorrupt) {
		t.Errorf("IsKind(%v, KindCorrupt) = true", err)
	}
	if IsKind(io.EOF, KindUnknown) {
		t.Errorf("IsKind(io.EOF, KindUnknown) = true")
	}
}

func TestKindString(t *testing.T) {
	for k := KindUnknown; k <= KindTarget; k++ {
		if k.String() == "" {
			t.Errorf("Kind(%d).String() is empty", k)
		}
	}
	if got := KindWrongPassword.String(); got != "wrong password" {
		t.Errorf("String() = %q, want %q", got, "wrong password")
	}
}
