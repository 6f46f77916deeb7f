// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Defacto2/magicnumber"
	"github.com/hashicorp/go-unpack/engine/command"
)

// Format describes an archive or compression format the engine can handle.
type Format struct {
	// Name is the canonical name, e.g. "zip" or "gz".
	Name string

	// Extensions are the file extensions (without dot) associated with the format.
	Extensions []string

	// Passwords is true if the format can be encrypted with a password.
	Passwords bool

	// Program is the external program that handles the format. It is empty
	// for formats that are handled natively.
	Program string
}

// String returns the name of the format.
func (f Format) String() string {
	return f.Name
}

// opener opens the archive at path and returns a walker over its entries. The
// returned closer must be closed once the walker is no longer used.
type opener func(ctx context.Context, cfg *Config, path string, password string, td *TelemetryData) (archiveWalker, io.Closer, error)

// headerCheck is a function that checks if the given header matches the expected magic bytes.
type headerCheck func([]byte) bool

// format is the registry entry of a [Format].
type format struct {
	Format

	// HeaderCheck identifies the format by its header. Formats without
	// unique magic bytes leave this nil and are detected by extension.
	HeaderCheck headerCheck
	MagicBytes  [][]byte
	Offset      int

	// Open is set for natively handled formats.
	Open opener

	// Signatures identify program handled formats with [magicnumber.Archive].
	Signatures []magicnumber.Signature
}

// availableFormats is the ordered registry of all known formats. Detection
// by header walks it top to bottom.
var availableFormats = slices.Concat(
	[]*format{
		{
			Format:      Format{Name: fileExtensionZip, Extensions: []string{fileExtensionZip}, Passwords: true},
			HeaderCheck: isZip,
			MagicBytes:  magicBytesZip,
			Open:        openZip,
		},
		{
			Format:      Format{Name: fileExtensionRar, Extensions: []string{fileExtensionRar}, Passwords: true},
			HeaderCheck: isRar,
			MagicBytes:  magicBytesRar,
			Open:        openRar,
		},
		{
			Format:      Format{Name: fileExtension7zip, Extensions: []string{fileExtension7zip}, Passwords: true},
			HeaderCheck: is7zip,
			MagicBytes:  magicBytes7zip,
			Open:        open7zip,
		},
		{
			Format:      Format{Name: fileExtensionTar, Extensions: []string{fileExtensionTar}},
			HeaderCheck: isTar,
			MagicBytes:  magicBytesTar,
			Offset:      offsetTar,
			Open:        openTar,
		},
	},
	codecFormats(),
	[]*format{
		{
			Format:     Format{Name: fileExtensionArj, Extensions: []string{fileExtensionArj}, Program: command.Zip7},
			Signatures: []magicnumber.Signature{magicnumber.ArchiveRobertJung},
		},
		{
			Format:     Format{Name: fileExtensionLha, Extensions: []string{fileExtensionLha, fileExtensionLzh}, Program: command.Zip7},
			Signatures: []magicnumber.Signature{magicnumber.YoshiLHA},
		},
		{
			Format:     Format{Name: fileExtensionCab, Extensions: []string{fileExtensionCab}, Program: command.Zip7},
			Signatures: []magicnumber.Signature{magicnumber.MicrosoftCABinet},
		},
		{
			Format:     Format{Name: fileExtensionArc, Extensions: []string{fileExtensionArc}, Program: command.Arc},
			Signatures: []magicnumber.Signature{magicnumber.ARChiveSEA},
		},
	},
)

// hasMagic reports whether data holds one of magic at offset.
func hasMagic(data []byte, offset int, magic [][]byte) bool {
	for _, m := range magic {
		if offset+len(m) <= len(data) && bytes.Equal(m, data[offset:offset+len(m)]) {
			return true
		}
	}
	return false
}

// maxHeaderLength is the maximum header length of all formats
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, f := range availableFormats {
		needs := f.Offset
		for _, mb := range f.MagicBytes {
			if len(mb)+f.Offset > needs {
				needs = len(mb) + f.Offset
			}
		}
		if needs > maxHeaderLength {
			maxHeaderLength = needs
		}
	}
}

// Formats returns all formats known to the engine.
func Formats() []Format {
	formats := make([]Format, 0, len(availableFormats))
	for _, f := range availableFormats {
		formats = append(formats, f.Format)
	}
	return formats
}

// Extensions returns the file extensions of all known formats.
func Extensions() []string {
	var exts []string
	for _, f := range availableFormats {
		exts = append(exts, f.Extensions...)
	}
	return exts
}

// lookupFormat returns the registry entry for name.
func lookupFormat(name string) (*format, bool) {
	for _, f := range availableFormats {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// detectFormat identifies the format of the file at path. The header is
// checked first, then the legacy signatures and finally the file extension
// for formats without magic bytes.
func detectFormat(path string) (*format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// check if path is a regular file
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file")
	}

	// read header
	header := make([]byte, maxHeaderLength)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}
	header = header[:n]

	// check magic bytes
	for _, af := range availableFormats {
		if af.HeaderCheck != nil && af.HeaderCheck(header) {
			return af, nil
		}
	}

	// check legacy signatures
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("cannot rewind: %w", err)
	}
	if sign, err := magicnumber.Archive(f); err == nil && sign != magicnumber.Unknown {
		for _, af := range availableFormats {
			for _, s := range af.Signatures {
				if s == sign {
					return af, nil
				}
			}
		}
	}

	// check extension of formats without unique magic bytes
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, af := range availableFormats {
		if af.HeaderCheck != nil || af.Open == nil {
			continue
		}
		for _, e := range af.Extensions {
			if e == ext {
				return af, nil
			}
		}
	}

	return nil, fmt.Errorf("no matching format")
}
