// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"time"
)

// fileExtensionTar is the file extension for tar files
const fileExtensionTar = "tar"

// offsetTar is the offset where the magic bytes are located in the file
const offsetTar = 257

// magicBytesTar are the magic bytes for tar files
var magicBytesTar = [][]byte{
	[]byte("ustar\x00tar\x00"),
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

// isTar checks if the header matches the magic bytes for tar files
func isTar(data []byte) bool {
	return hasMagic(data, offsetTar, magicBytesTar)
}

// openTar opens the tar archive at path.
func openTar(ctx context.Context, cfg *Config, path string, password string, td *TelemetryData) (archiveWalker, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, handleError(td, KindUnknown, "cannot open tar", err)
	}
	ler := newInputLimiter(f, cfg.MaxInputSize())
	closer := closerFunc(func() error {
		captureInputSize(td, ler)
		return f.Close()
	})
	return &tarWalker{tr: tar.NewReader(ler)}, closer, nil
}

// tarWalker is a walker for tar files
type tarWalker struct {
	tr *tar.Reader
}

// Type returns the file extension for tar files
func (t *tarWalker) Type() string {
	return fileExtensionTar
}

// Next returns the next entry in the tar archive. Global pax headers, as
// written by git archive, carry no file and are skipped.
func (t *tarWalker) Next() (archiveEntry, error) {
	for {
		hdr, err := t.tr.Next()
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		return &tarEntry{hdr, t.tr}, nil
	}
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

func (t *tarEntry) Name() string                 { return t.hdr.Name }
func (t *tarEntry) Size() int64                  { return t.hdr.Size }
func (t *tarEntry) Mode() fs.FileMode            { return t.hdr.FileInfo().Mode() }
func (t *tarEntry) Linkname() string             { return t.hdr.Linkname }
func (t *tarEntry) Encrypted() bool              { return false }
func (t *tarEntry) IsRegular() bool              { return t.hdr.Typeflag == tar.TypeReg }
func (t *tarEntry) IsDir() bool                  { return t.hdr.Typeflag == tar.TypeDir }
func (t *tarEntry) IsSymlink() bool              { return t.hdr.Typeflag == tar.TypeSymlink }
func (t *tarEntry) Open() (io.ReadCloser, error) { return io.NopCloser(t.tr), nil }
func (t *tarEntry) AccessTime() time.Time        { return t.hdr.AccessTime }
func (t *tarEntry) ModTime() time.Time           { return t.hdr.ModTime }

// closerFunc adapts a function to io.Closer.
type closerFunc func() error

// Close calls f.
func (f closerFunc) Close() error {
	return f()
}
