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

	"github.com/nwaples/rardecode/v2"
)

// fileExtensionRar is the file extension for Rar files.
const fileExtensionRar = "rar"

// magicBytesRar are the magic bytes for Rar files.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // Rar 1.5
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // Rar 5.0
}

// isRar checks if the header matches the magic bytes for Rar files.
func isRar(data []byte) bool {
	return hasMagic(data, 0, magicBytesRar)
}

// rarReader is the part of [rardecode.ReadCloser] the walker needs.
type rarReader interface {
	io.Reader
	Next() (*rardecode.FileHeader, error)
}

// openRar opens the rar archive at path, including all of its volumes.
func openRar(ctx context.Context, cfg *Config, path string, password string, td *TelemetryData) (archiveWalker, io.Closer, error) {
	// check input size
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, handleError(td, KindUnknown, "cannot stat rar", err)
	}
	td.InputSize = stat.Size()
	if cfg.MaxInputSize() != -1 && stat.Size() > cfg.MaxInputSize() {
		return nil, nil, handleError(td, KindLimit, "cannot open rar", ErrMaxInputSizeExceeded)
	}

	// collect decoder options
	var opts []rardecode.Option
	if cfg.MaxDictionarySize() > 0 {
		opts = append(opts, rardecode.MaxDictionarySize(cfg.MaxDictionarySize()))
	}
	if password != "" {
		opts = append(opts, rardecode.Password(password))
	}

	// open archive
	rc, err := rardecode.OpenReader(path, opts...)
	if err != nil {
		w := &rarWalker{}
		return nil, nil, handleError(td, classifyReadError(w, nil, err), "cannot create rar decoder", err)
	}
	return &rarWalker{r: rc}, rc, nil
}

// rarWalker is an archiveWalker for Rar files.
type rarWalker struct {
	r rarReader
}

// Type returns the file extension for rar files.
func (rw *rarWalker) Type() string {
	return fileExtensionRar
}

// Next returns the next entry in the rar file.
func (rw *rarWalker) Next() (archiveEntry, error) {
	fh, err := rw.r.Next()
	if err != nil {
		return nil, err
	}
	return &rarEntry{fh, rw.r}, nil
}

// isPasswordError reports whether err indicates that archive decryption
// credentials are required or incorrect.
func (rw *rarWalker) isPasswordError(err error) bool {
	return errors.Is(err, rardecode.ErrArchiveEncrypted) ||
		errors.Is(err, rardecode.ErrArchivedFileEncrypted) ||
		errors.Is(err, rardecode.ErrBadPassword)
}

// rarEntry is an archiveEntry for Rar files.
type rarEntry struct {
	f *rardecode.FileHeader
	r io.Reader
}

func (r *rarEntry) Name() string                 { return r.f.Name }
func (r *rarEntry) Size() int64                  { return r.f.UnPackedSize }
func (r *rarEntry) Mode() fs.FileMode            { return r.f.Mode() }
func (r *rarEntry) Linkname() string             { return "" }
func (r *rarEntry) Encrypted() bool              { return false }
func (r *rarEntry) IsRegular() bool              { return r.f.Mode().IsRegular() }
func (r *rarEntry) IsDir() bool                  { return r.f.IsDir }
func (r *rarEntry) IsSymlink() bool              { return false }
func (r *rarEntry) Open() (io.ReadCloser, error) { return io.NopCloser(r.r), nil }
func (r *rarEntry) AccessTime() time.Time        { return r.f.AccessTime }
func (r *rarEntry) ModTime() time.Time           { return r.f.ModificationTime }
