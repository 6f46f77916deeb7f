// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/bodgit/sevenzip"
)

// fileExtension7zip is the file extension for 7zip files
const fileExtension7zip = "7z"

// magicBytes7zip are the magic bytes for 7zip files
var magicBytes7zip = [][]byte{
	{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C},
}

// is7zip checks if the header matches the magic bytes for 7zip files
func is7zip(data []byte) bool {
	return hasMagic(data, 0, magicBytes7zip)
}

// open7zip opens the 7zip archive at path. Archives with encrypted headers
// fail to open without the right password.
func open7zip(ctx context.Context, cfg *Config, path string, password string, td *TelemetryData) (archiveWalker, io.Closer, error) {
	// check input size
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, handleError(td, KindUnknown, "cannot stat 7zip", err)
	}
	td.InputSize = stat.Size()
	if cfg.MaxInputSize() != -1 && stat.Size() > cfg.MaxInputSize() {
		return nil, nil, handleError(td, KindLimit, "cannot open 7zip", ErrMaxInputSizeExceeded)
	}

	// create 7zip reader
	rc, err := sevenzip.OpenReaderWithPassword(path, password)
	if err != nil {
		w := &sevenZipWalker{}
		return nil, nil, handleError(td, classifyReadError(w, nil, err), "cannot create 7zip reader", err)
	}
	return &sevenZipWalker{r: &rc.Reader}, rc, nil
}

// sevenZipWalker is a walker for 7zip files
type sevenZipWalker struct {
	r  *sevenzip.Reader
	fp int
}

// Type returns the file extension for 7zip files
func (z *sevenZipWalker) Type() string {
	return fileExtension7zip
}

// Next returns the next entry in the 7zip archive
func (z *sevenZipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.r.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	return &sevenZipEntry{z.r.File[z.fp]}, nil
}

// isPasswordError checks the encryption hint of the decoder.
func (z *sevenZipWalker) isPasswordError(err error) bool {
	var re *sevenzip.ReadError
	return errors.As(err, &re) && re.Encrypted
}

// sevenZipEntry is an entry in a 7zip archive
type sevenZipEntry struct {
	f *sevenzip.File
}

func (z *sevenZipEntry) Name() string      { return z.f.Name }
func (z *sevenZipEntry) Size() int64       { return z.f.FileInfo().Size() }
func (z *sevenZipEntry) Mode() fs.FileMode { return z.f.FileInfo().Mode() }

// Linkname returns the target of a symlink entry, which is stored as content.
func (z *sevenZipEntry) Linkname() string {
	rc, err := z.f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(data)
}

func (z *sevenZipEntry) Encrypted() bool              { return false }
func (z *sevenZipEntry) IsRegular() bool              { return z.f.FileInfo().Mode().IsRegular() }
func (z *sevenZipEntry) IsDir() bool                  { return z.f.FileInfo().IsDir() }
func (z *sevenZipEntry) IsSymlink() bool              { return z.f.FileInfo().Mode().Type() == fs.ModeSymlink }
func (z *sevenZipEntry) Open() (io.ReadCloser, error) { return z.f.Open() }
func (z *sevenZipEntry) AccessTime() time.Time        { return z.f.Accessed }
func (z *sevenZipEntry) ModTime() time.Time           { return z.f.Modified }
