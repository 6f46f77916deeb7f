// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-unpack/engine"
)

// probePassword is a password no real archive uses. Testing an archive with
// it fails exactly if the archive is encrypted.
const probePassword = "FakePwd"

// EncryptionState is what is known about the encryption of an archive.
type EncryptionState int

const (
	// EncryptionUnknown means the archive has not been probed yet.
	EncryptionUnknown EncryptionState = iota

	// NotEncrypted archives are extracted without a password.
	NotEncrypted

	// Encrypted archives need a password.
	Encrypted
)

// String returns the name of s.
func (s EncryptionState) String() string {
	switch s {
	case NotEncrypted:
		return "not encrypted"
	case Encrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// EncryptedAction decides what happens with password protected archives.
type EncryptedAction int

const (
	// EncryptedSkip leaves encrypted archives alone.
	EncryptedSkip EncryptedAction = iota

	// EncryptedDefault tries the configured default passwords in order.
	EncryptedDefault

	// EncryptedManually asks the [CredentialSource] for a password.
	EncryptedManually
)

// String returns the name of a as accepted by [ParseEncryptedAction].
func (a EncryptedAction) String() string {
	switch a {
	case EncryptedSkip:
		return "skip"
	case EncryptedDefault:
		return "default"
	case EncryptedManually:
		return "manually"
	default:
		return fmt.Sprintf("encrypted-action(%d)", int(a))
	}
}

// ParseEncryptedAction parses "skip", "default" or "manually".
func ParseEncryptedAction(s string) (EncryptedAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return EncryptedSkip, nil
	case "default":
		return EncryptedDefault, nil
	case "manually":
		return EncryptedManually, nil
	}
	return 0, fmt.Errorf("%w: encrypted action %q", ErrInvalidPolicy, s)
}

// IsEncrypted reports whether the archive at path needs a password. The
// archive is tested with a wrong password: success, or a format that has no
// passwords, means not encrypted. So does a violated engine limit, which
// extraction reports. Every other failure means encrypted.
func IsEncrypted(ctx context.Context, eng Engine, path string, log logger) bool {
	return probeEncryption(ctx, eng, path, log) == Encrypted
}

// probeEncryption determines the [EncryptionState] of the archive at path.
func probeEncryption(ctx context.Context, eng Engine, path string, log logger) EncryptionState {
	err := eng.TestIntegrity(ctx, path, probePassword)
	switch {
	case err == nil:
		return NotEncrypted
	case engine.IsKind(err, engine.KindPasswordUnsupported):
		return NotEncrypted
	case engine.IsKind(err, engine.KindLimit):
		// a password does not help, extraction reports the limit
		log.Warn("archive exceeds a limit, assuming no encryption", "path", path, "error", err)
		return NotEncrypted
	case engine.IsKind(err, engine.KindWrongPassword):
		log.Info("archive needs a password", "path", path)
		return Encrypted
	}
	log.Error("archive test failed, assuming encryption", "path", path, "error", err)
	return Encrypted
}
