// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package unpack recursively extracts archives, including archives that are
// nested inside other archives.
//
// [Unpack] walks a directory tree depth-first. Every file that the archive
// engine recognizes is probed for encryption, extracted into a directory
// named after the archive next to it and then walked itself, until no
// archives are left. Encrypted archives are skipped, opened with one of a
// list of default passwords or opened with a password from a
// [CredentialSource], depending on the [EncryptedAction]. Existing
// destination directories are handled with a [CollisionPolicy].
//
// Extracted archives stay where they are unless [WithRemoveSource] is set,
// so with the defaults every archive remains next to its destination.
//
// A failed archive never stops the run: its partial destination is removed,
// the archive is kept, and the failure is counted in the [Summary].
// Configuration is done with [Config] in the option pattern style.
package unpack
