// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package engine

import (
	"fmt"
	"runtime"
	"time"
)

// lchtimes is not available outside of unix.
func lchtimes(_ string, _, _ time.Time) error {
	return fmt.Errorf("Lchtimes is not supported on this platform (%s)", runtime.GOOS)
}

// canMaintainSymlinkTimestamps is false, symlink times are left untouched.
const canMaintainSymlinkTimestamps = false
