// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack_test

import (
	"fmt"
	"testing"
	"time"

	unpack "github.com/hashicorp/go-unpack"
)

// TestSummaryString tests the String method of the summary struct
func TestSummaryString(t *testing.T) {
	s := unpack.Summary{
		Directories: 3,
		Archives:    4,
		Extracted:   2,
		Skipped:     1,
		Failed:      1,
		Duration:    5 * time.Millisecond,
		LastError:   fmt.Errorf("example error"),
	}

	expected := `{"last_error":"example error","directories":3,"archives":4,"extracted":2,"skipped":1,"failed":1,"missing":0,"removed":0,"duration":5000000}`
	if s.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, s.String())
	}
}
