// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestInputLimiterCount(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		input      string
		bufferSize int
		expectN    int
	}{
		{name: "Under limit", limit: 10, input: "12345", bufferSize: 5, expectN: 5},
		{name: "At limit", limit: 5, input: "12345", bufferSize: 5, expectN: 5},
		{name: "Over limit", limit: 4, input: "12345", bufferSize: 5, expectN: 4},
		{name: "Under limit with buffer", limit: 10, input: "12345", bufferSize: 2, expectN: 2},
		{name: "Unlimited", limit: -1, input: "12345", bufferSize: 5, expectN: 5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := newInputLimiter(strings.NewReader(test.input), test.limit)
			buf := make([]byte, test.bufferSize)
			n, err := l.Read(buf)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if n != test.expectN {
				t.Errorf("Read() = %v, want %v", n, test.expectN)
			}
			if l.Count() != int64(test.expectN) {
				t.Errorf("Count() = %v, want %v", l.Count(), test.expectN)
			}
		})
	}
}

func TestInputLimiterExceeded(t *testing.T) {
	l := newInputLimiter(strings.NewReader("1234567890"), 4)
	data, err := io.ReadAll(l)
	if !errors.Is(err, ErrMaxInputSizeExceeded) {
		t.Fatalf("ReadAll() error = %v, want %v", err, ErrMaxInputSizeExceeded)
	}
	if string(data) != "1234" {
		t.Errorf("ReadAll() = %q, want %q", data, "1234")
	}
}

func TestLimitWriter(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		input   string
		want    string
		wantErr bool
	}{
		{name: "unlimited", limit: -1, input: "12345", want: "12345"},
		{name: "under limit", limit: 10, input: "12345", want: "12345"},
		{name: "at limit", limit: 5, input: "12345", want: "12345"},
		{name: "over limit", limit: 3, input: "12345", want: "123", wantErr: true},
		{name: "zero limit", limit: 0, input: "12345", want: "", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := io.Copy(limitWriter(&buf, test.limit), strings.NewReader(test.input))
			if test.wantErr != errors.Is(err, ErrMaxExtractionSizeExceeded) {
				t.Errorf("Copy() error = %v, wantErr %v", err, test.wantErr)
			}
			if buf.String() != test.want {
				t.Errorf("written = %q, want %q", buf.String(), test.want)
			}
		})
	}
}

func TestLimitKind(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrMaxFilesExceeded, KindLimit},
		{ErrMaxExtractionSizeExceeded, KindLimit},
		{&readError{ErrMaxInputSizeExceeded}, KindLimit},
		{io.ErrUnexpectedEOF, KindCorrupt},
	}

	for _, test := range tests {
		t.Run(test.err.Error(), func(t *testing.T) {
			if got := limitKind(test.err, KindCorrupt); got != test.want {
				t.Errorf("limitKind(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
