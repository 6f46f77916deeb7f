// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack_test

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/yeka/zip"
)

// entry is a file inside a generated archive.
type entry struct {
	name    string
	content []byte
}

// zipBytes returns a zip archive with entries. If password is not empty,
// the entries are AES-256 encrypted.
func zipBytes(t *testing.T, password string, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		var w io.Writer
		var err error
		if password != "" {
			w, err = zw.Encrypt(e.name, password, zip.AES256Encryption)
		} else {
			w, err = zw.Create(e.name)
		}
		if err != nil {
			t.Fatalf("cannot create zip entry %s: %v", e.name, err)
		}
		if _, err := w.Write(e.content); err != nil {
			t.Fatalf("cannot write zip entry %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close zip writer: %v", err)
	}
	return buf.Bytes()
}

// tarGzBytes returns a gzip compressed tar archive with entries.
func tarGzBytes(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0640, Size: int64(len(e.content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("cannot write tar header: %v", err)
		}
		if _, err := tw.Write(e.content); err != nil {
			t.Fatalf("cannot write tar content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("cannot close tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("cannot close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// gzBytes returns data as a gzip stream.
func gzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("cannot write gzip stream: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("cannot close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// write writes data to dir/name, creating parent directories.
func write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("cannot create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
	return path
}

// tree returns all paths below root, relative to root, with the content of
// regular files.
func tree(t *testing.T, root string) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			got[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("cannot walk %s: %v", root, err)
	}
	return got
}
