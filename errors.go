// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import "errors"

var (
	// ErrAbort is returned by [ResolveTarget] if the archive must not be
	// extracted, because its destination exists and the policy is skip.
	ErrAbort = errors.New("destination exists, extraction aborted")

	// ErrInvalidPolicy indicates an unknown collision policy or encrypted action.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrNilEngine is returned by [Unpack] if no engine is provided.
	ErrNilEngine = errors.New("no archive engine")

	// ErrNoCredential is returned by a [CredentialSource] that has no password
	// for an archive.
	ErrNoCredential = errors.New("no credential available")
)
