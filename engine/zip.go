// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/yeka/zip"
)

// fileExtensionZip is the file extension for zip files.
const fileExtensionZip = "zip"

// magicBytesZip contains the magic bytes for a zip archive.
// reference: https://golang.org/pkg/archive/zip/
var magicBytesZip = [][]byte{
	{0x50, 0x4B, 0x03, 0x04},
}

// isZip checks if data is a zip archive.
func isZip(data []byte) bool {
	return hasMagic(data, 0, magicBytesZip)
}

// openZip opens the zip archive at path. The password is set on every
// encrypted entry; unencrypted entries ignore it.
func openZip(ctx context.Context, cfg *Config, path string, password string, td *TelemetryData) (archiveWalker, io.Closer, error) {
	// check input size
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, handleError(td, KindUnknown, "cannot stat zip", err)
	}
	td.InputSize = stat.Size()
	if cfg.MaxInputSize() != -1 && stat.Size() > cfg.MaxInputSize() {
		return nil, nil, handleError(td, KindLimit, "cannot open zip", ErrMaxInputSizeExceeded)
	}

	// create zip reader
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, handleError(td, KindCorrupt, "cannot create zip reader", err)
	}
	return &zipWalker{zr: &zr.Reader, password: password}, zr, nil
}

// zipWalker is a walker for zip files
type zipWalker struct {
	zr       *zip.Reader
	fp       int
	password string
}

// Type returns the file extension for zip files
func (z *zipWalker) Type() string {
	return fileExtensionZip
}

// Next returns the next entry in the zip archive
func (z *zipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.zr.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	zf := z.zr.File[z.fp]
	if zf.IsEncrypted() {
		zf.SetPassword(z.password)
	}
	return &zipEntry{zf}, nil
}

// zipEntry is an entry in a zip archive
type zipEntry struct {
	zf *zip.File
}

func (z *zipEntry) Name() string      { return z.zf.FileHeader.Name }
func (z *zipEntry) Size() int64       { return int64(z.zf.FileHeader.UncompressedSize64) }
func (z *zipEntry) Mode() fs.FileMode { return z.zf.FileHeader.Mode() }

// Linkname returns the target of a symlink entry, which zip stores as content.
func (z *zipEntry) Linkname() string {
	rc, err := z.zf.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(data)
}

func (z *zipEntry) Encrypted() bool { return z.zf.IsEncrypted() }
func (z *zipEntry) IsRegular() bool { return z.zf.FileHeader.Mode().Type() == 0 }
func (z *zipEntry) IsDir() bool     { return z.zf.FileHeader.Mode().Type() == fs.ModeDir }
func (z *zipEntry) IsSymlink() bool { return z.zf.FileHeader.Mode().Type() == fs.ModeSymlink }

// Open returns a reader for the entry
func (z *zipEntry) Open() (io.ReadCloser, error) {
	rc, err := z.zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", z.zf.Name, err)
	}
	return rc, nil
}

func (z *zipEntry) AccessTime() time.Time { return z.ModTime() }
func (z *zipEntry) ModTime() time.Time    { return z.zf.FileHeader.FileInfo().ModTime() }
