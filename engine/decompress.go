// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"
)

// decompressionFunc wraps src with a decompressor.
type decompressionFunc func(io.Reader) (io.Reader, error)

// openCompressed opens the compressed stream at path. If the decompressed
// content is a tar archive, a walker over the tar entries is returned.
// Otherwise the walker yields a single file named after the input.
func openCompressed(cfg *Config, path string, decFunc decompressionFunc, fileExt string, td *TelemetryData) (archiveWalker, io.Closer, error) {
	cfg.Logger().Debug("decompress", "fileExt", fileExt)

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, handleError(td, KindUnknown, "cannot open input", err)
	}

	// limit input size
	ler := newInputLimiter(f, cfg.MaxInputSize())

	// start decompression
	decompressedStream, err := decFunc(ler)
	if err != nil {
		f.Close()
		return nil, nil, handleError(td, limitKind(err, KindCorrupt), "cannot start decompression", err)
	}
	closer := closerFunc(func() error {
		captureInputSize(td, ler)
		if c, ok := decompressedStream.(io.Closer); ok {
			c.Close()
		}
		return f.Close()
	})

	// peek at the decompressed content, short streams are fine
	br := bufio.NewReaderSize(decompressedStream, max(maxHeaderLength, 4096))
	header, err := br.Peek(maxHeaderLength)
	if err != nil && !errors.Is(err, io.EOF) {
		closer.Close()
		return nil, nil, handleError(td, limitKind(err, KindCorrupt), "cannot read uncompressed header", err)
	}

	// check for tar header
	if !cfg.NoUntarAfterDecompression() && isTar(header) {
		td.ExtractedType = fmt.Sprintf("tar.%s", fileExt)
		return &tarWalker{tr: tar.NewReader(br)}, closer, nil
	}

	name := determineOutputName(filepath.Base(path), fileExt)
	cfg.Logger().Debug("determined output name", "name", name)
	return &streamWalker{
		fileExt: fileExt,
		entry:   &streamEntry{name: name, r: br, mode: cfg.CustomDecompressFileMode()},
	}, closer, nil
}

// streamWalker is a walker over the single file of a compressed stream.
type streamWalker struct {
	fileExt string
	entry   *streamEntry
	done    bool
}

// Type returns the file extension of the compression.
func (s *streamWalker) Type() string {
	return s.fileExt
}

// Next returns the decompressed file once.
func (s *streamWalker) Next() (archiveEntry, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.entry, nil
}

// streamEntry is the decompressed file of a compressed stream.
type streamEntry struct {
	name string
	r    io.Reader
	mode fs.FileMode
}

func (s *streamEntry) AccessTime() time.Time        { return time.Time{} }
func (s *streamEntry) Encrypted() bool              { return false }
func (s *streamEntry) IsDir() bool                  { return false }
func (s *streamEntry) IsRegular() bool              { return true }
func (s *streamEntry) IsSymlink() bool              { return false }
func (s *streamEntry) Linkname() string             { return "" }
func (s *streamEntry) Mode() fs.FileMode            { return s.mode }
func (s *streamEntry) ModTime() time.Time           { return time.Time{} }
func (s *streamEntry) Name() string                 { return s.name }
func (s *streamEntry) Open() (io.ReadCloser, error) { return io.NopCloser(s.r), nil }
func (s *streamEntry) Size() int64                  { return 0 }

// init prepares the filename restriction regex
func init() {
	namingRestrictions = []nameRestriction{
		{"empty name", regexp.MustCompile(`^$`)},
		{"current directory", regexp.MustCompile(`^\.$`)},
		{"parent directory", regexp.MustCompile(`^\.\.$`)},
		{"maximum length 255", regexp.MustCompile(`^.{256,}$`)},
		{"exclude line break, feed and tab", regexp.MustCompile(`[\x0a\x0d\x09]`)},
	}

	if runtime.GOOS != "windows" {
		namingRestrictions = append(namingRestrictions,
			nameRestriction{"invalid character in filename (unix): null byte, slash, backslash", regexp.MustCompile(`[\x00/\\]`)},
		)
	}

	// https://docs.microsoft.com/en-us/windows/win32/fileio/naming-a-file
	if runtime.GOOS == "windows" {
		namingRestrictions = append(namingRestrictions,
			nameRestriction{"invalid characters (windows)", regexp.MustCompile(`[\x00-\x1f<>:"/\\|?*]`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(?i)(CON|PRN|AUX|NUL|COM[0-9]+|LPT[0-9]+)$`)},
			nameRestriction{"reserved name", regexp.MustCompile(`^(\s|\.)+$`)},
		)
	}
}

// nameRestriction is a struct that contains the name of the restriction and the regex to check for it
type nameRestriction struct {
	RestrictionName string
	Regex           *regexp.Regexp
}

// namingRestrictions is a list of restrictions for filenames, depending on the operating system
var namingRestrictions []nameRestriction

const (
	// defaultDecompressionName is the name for decompressed content if no
	// valid name can be derived from the input
	defaultDecompressionName = "unpack-decompressed-content"

	// defaultDecompressedSuffix is the suffix for the decompressed content if
	// the filename does not end with a file extension of the format
	defaultDecompressedSuffix = "decompressed"
)

// determineOutputName derives the name of the decompressed file from
// inputName by removing the extension of the format.
func determineOutputName(inputName string, fileExt string) string {
	newName := inputName

	// remove file extension, "tgz" and friends become "tar"
	lower := strings.ToLower(inputName)
	extensions := []string{fileExt}
	if c, ok := lookupCodec(fileExt); ok {
		extensions = c.extensions()
	}
	for _, ext := range extensions {
		if !strings.HasSuffix(lower, "."+ext) {
			continue
		}
		newName = newName[:len(newName)-len(ext)-1]
		if isTarShorthand(ext) {
			newName = newName + "." + fileExtensionTar
		}
		break
	}

	// check if file extension has been removed, if not, add a suffix
	if newName == inputName {
		newName = fmt.Sprintf("%s.%s", inputName, defaultDecompressedSuffix)
	}

	// check newName is a valid utf8 string
	if !utf8.ValidString(newName) {
		return defaultDecompressionName
	}

	// check if the new filename is valid for the operating system
	for _, restriction := range namingRestrictions {
		if restriction.Regex.FindStringIndex(newName) != nil {
			return defaultDecompressionName
		}
	}

	return newName
}
