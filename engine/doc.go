// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package engine detects, tests and extracts archives and compressed files.
//
// Zip (including encrypted entries), rar, 7zip and tar archives as well as
// gzip, bzip2, xz, lzma, zstandard, lz4, snappy, zlib and brotli streams are
// handled natively. A compressed stream that holds a tar archive is untarred.
// The legacy formats arj, lha, cab and arc are delegated to external
// programs, see package command, and are only usable if those are installed.
//
// Every operation returns an [*Error] with a [Kind] that tells a wrong
// password apart from damaged content. Configuration is done with [Config]
// in the option pattern style. Limits for the input size, the extraction
// size and the number of files protect against exhaustion, and all writes
// go through a [Target] that rejects path traversal and symlinks.
package engine
