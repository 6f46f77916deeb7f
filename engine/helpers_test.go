// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine_test

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
	"github.com/yeka/zip"
)

// testFile is a file that is written into a generated archive.
type testFile struct {
	name    string
	content string
}

// defaultFiles is the content of most generated archives.
var defaultFiles = []testFile{
	{"a.txt", "content of a"},
	{"sub/b.txt", "content of b"},
}

// createZip writes a zip archive with files to dir/name. If password is not
// empty, all files are AES-256 encrypted.
func createZip(t *testing.T, dir, name, password string, files ...testFile) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		var w io.Writer
		var err error
		if password != "" {
			w, err = zw.Encrypt(f.name, password, zip.AES256Encryption)
		} else {
			w, err = zw.Create(f.name)
		}
		if err != nil {
			t.Fatalf("cannot create zip entry %s: %v", f.name, err)
		}
		if _, err := io.WriteString(w, f.content); err != nil {
			t.Fatalf("cannot write zip entry %s: %v", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close zip writer: %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

// tarBytes returns a tar archive with files.
func tarBytes(t *testing.T, files ...testFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, f := range files {
		hdr := &tar.Header{
			Name:     f.name,
			Mode:     0640,
			Size:     int64(len(f.content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("cannot write tar header: %v", err)
		}
		if _, err := io.WriteString(tw, f.content); err != nil {
			t.Fatalf("cannot write tar content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("cannot close tar writer: %v", err)
	}
	return buf.Bytes()
}

// createTar writes a tar archive with files to dir/name.
func createTar(t *testing.T, dir, name string, files ...testFile) string {
	t.Helper()
	return writeFile(t, dir, name, tarBytes(t, files...))
}

// compressor wraps a writer with a compression algorithm.
type compressor func(io.Writer) (io.WriteCloser, error)

var (
	gzipCompressor = func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }
	bzip2Compressor = func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	}
	xzCompressor     = func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) }
	lzmaCompressor   = func(w io.Writer) (io.WriteCloser, error) { return lzma.NewWriter(w) }
	zstdCompressor   = func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }
	lz4Compressor    = func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }
	snappyCompressor = func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil }
	zlibCompressor   = func(w io.Writer) (io.WriteCloser, error) { return zlib.NewWriter(w), nil }
	brotliCompressor = func(w io.Writer) (io.WriteCloser, error) { return brotli.NewWriter(w), nil }
)

// compress returns data compressed with c.
func compress(t *testing.T, c compressor, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := c(&buf)
	if err != nil {
		t.Fatalf("cannot create compressor: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("cannot compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("cannot close compressor: %v", err)
	}
	return buf.Bytes()
}

// writeFile writes data to dir/name and returns the path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0640); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read %s: %v", path, err)
	}
	return string(data)
}
