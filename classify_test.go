// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Defacto2/helper"
	"github.com/golang/mock/gomock"
	unpack "github.com/hashicorp/go-unpack"
	"github.com/hashicorp/go-unpack/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.zip", "a"},
		{filepath.Join("dir", "a.zip"), "a"},
		{filepath.Join("dir", "a.tar.gz"), "a.tar"},
		{"README", "README"},
		{".profile", ".profile"},
		{".config.zip", ".config"},
		{"a.", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, unpack.FileBaseName(tt.path))
		})
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOk bool
	}{
		{"a.zip", "zip", true},
		{"A.ZIP", "zip", true},
		{filepath.Join("dir.d", "a.tar.gz"), "gz", true},
		{filepath.Join("dir.d", "README"), "", false},
		{".profile", "", false},
		{"a.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := unpack.FileExtension(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOk, ok)
		})
	}
}

func TestIsArchive(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New()

	zipPath := write(t, dir, "a.zip", zipBytes(t, "", entry{"a.txt", []byte("a")}))
	tgzPath := write(t, dir, "a.tgz", tarGzBytes(t, entry{"a.txt", []byte("a")}))
	hiddenZip := write(t, dir, "a.data", zipBytes(t, "", entry{"a.txt", []byte("a")}))
	fakeZip := write(t, dir, "fake.zip", []byte("not a zip"))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, helper.Touch(text))

	assert.True(t, unpack.IsArchive(eng, zipPath))
	assert.True(t, unpack.IsArchive(eng, tgzPath))
	assert.False(t, unpack.IsArchive(eng, hiddenZip), "unknown extensions are not detected")
	assert.False(t, unpack.IsArchive(eng, fakeZip))
	assert.False(t, unpack.IsArchive(eng, text))
	assert.False(t, unpack.IsArchive(eng, filepath.Join(dir, "missing.zip")))
}

func TestIsArchiveEngineErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := NewMockEngine(ctrl)

	// no extension, no engine call
	assert.False(t, unpack.IsArchive(eng, "README"))
	assert.False(t, unpack.IsArchive(eng, "notes.txt"))

	eng.EXPECT().DetectFormat("unknown.zip").Return(engine.Format{}, &engine.Error{Kind: engine.KindUnknownFormat})
	assert.False(t, unpack.IsArchive(eng, "unknown.zip"))

	arj := engine.Format{Name: "arj", Program: "7zz"}
	eng.EXPECT().DetectFormat("legacy.arj").Return(arj, nil)
	eng.EXPECT().ValidateFormat(arj).Return(errors.New("program not found"))
	assert.False(t, unpack.IsArchive(eng, "legacy.arj"))

	zipFormat := engine.Format{Name: "zip"}
	eng.EXPECT().DetectFormat("ok.zip").Return(zipFormat, nil)
	eng.EXPECT().ValidateFormat(zipFormat).Return(nil)
	assert.True(t, unpack.IsArchive(eng, "ok.zip"))
}
