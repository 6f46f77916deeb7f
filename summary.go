// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"context"
	"encoding/json"
	"time"
)

// Summary counts what happened during a run of [Unpack].
type Summary struct {
	// Directories is the number of visited directories
	Directories int64 `json:"directories"`

	// Archives is the number of archives found
	Archives int64 `json:"archives"`

	// Extracted is the number of successfully extracted archives
	Extracted int64 `json:"extracted"`

	// Skipped is the number of archives that were not extracted, because
	// no password was found or the destination exists
	Skipped int64 `json:"skipped"`

	// Failed is the number of archives whose extraction failed
	Failed int64 `json:"failed"`

	// Missing is the number of paths that disappeared before they were visited
	Missing int64 `json:"missing"`

	// Removed is the number of deleted source archives
	Removed int64 `json:"removed"`

	// Duration is the run time
	Duration time.Duration `json:"duration"`

	// LastError is the last error of a failed archive
	LastError error `json:"last_error"`
}

// String returns a string representation of [Summary].
func (s Summary) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (s Summary) MarshalJSON() ([]byte, error) {
	var lastError string
	if s.LastError != nil {
		lastError = s.LastError.Error()
	}

	type Alias Summary
	return json.Marshal(&struct {
		LastError string `json:"last_error"`
		*Alias
	}{
		LastError: lastError,
		Alias:     (*Alias)(&s),
	})
}

// SummaryHook is a function type that consumes the [Summary] after a run of
// [Unpack] has finished.
type SummaryHook func(context.Context, *Summary)

// now is a function point that returns time.Now to the caller.
var now = time.Now
