// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

const (
	fileExtensionBrotli   = "br"
	fileExtensionBzip2    = "bz2"
	fileExtensionGZip     = "gz"
	fileExtensionLZ4      = "lz4"
	fileExtensionLzma     = "lzma"
	fileExtensionSnappy   = "sz"
	fileExtensionXz       = "xz"
	fileExtensionZlib     = "zz"
	fileExtensionZstd     = "zst"
	fileExtensionTarBzip2 = "tbz2"
	fileExtensionTarGZip  = "tgz"
	fileExtensionTarLzma  = "tlz"
	fileExtensionTarXz    = "txz"
	fileExtensionTarZstd  = "tzst"
)

// codec is a compression format without archive structure. Its content is a
// single file, or the entries of a tar archive.
type codec struct {
	// name is also the file extension
	name string

	// tarShorthand is the single extension of a tar compressed with the
	// codec, like "tgz"
	tarShorthand string

	// magic is empty for streams without signature, which are detected by
	// extension only
	magic [][]byte

	newReader decompressionFunc
}

// extensions returns all extensions of c.
func (c codec) extensions() []string {
	if c.tarShorthand == "" {
		return []string{c.name}
	}
	return []string{c.name, c.tarShorthand}
}

// open is the [opener] of c.
func (c codec) open(ctx context.Context, cfg *Config, path string, password string, td *TelemetryData) (archiveWalker, io.Closer, error) {
	return openCompressed(cfg, path, c.newReader, c.name, td)
}

// codecs in detection order.
//
// magic bytes references:
//   - gzip: https://www.rfc-editor.org/rfc/rfc1952
//   - bzip2: https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
//   - xz: https://tukaani.org/xz/xz-file-format-1.0.4.txt
//   - zstd: https://www.rfc-editor.org/rfc/rfc8878.html
//   - lz4: https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md
//   - zlib: https://www.rfc-editor.org/rfc/rfc1950
var codecs = []codec{
	{
		name:         fileExtensionGZip,
		tarShorthand: fileExtensionTarGZip,
		magic:        [][]byte{{0x1f, 0x8b}},
		newReader: func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
	},
	{
		name:         fileExtensionBzip2,
		tarShorthand: fileExtensionTarBzip2,
		magic:        bzip2Magic(),
		newReader: func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r, &bzip2.ReaderConfig{})
		},
	},
	{
		name:         fileExtensionXz,
		tarShorthand: fileExtensionTarXz,
		magic:        [][]byte{{0xfd, '7', 'z', 'X', 'Z', 0x00}},
		newReader: func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		},
	},
	{
		name:         fileExtensionZstd,
		tarShorthand: fileExtensionTarZstd,
		magic:        [][]byte{{0x28, 0xb5, 0x2f, 0xfd}},
		newReader: func(r io.Reader) (io.Reader, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			// closing stops the decoder goroutines
			return d.IOReadCloser(), nil
		},
	},
	{
		name:  fileExtensionLZ4,
		magic: [][]byte{{0x04, 0x22, 0x4d, 0x18}},
		newReader: func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		},
	},
	{
		name:  fileExtensionSnappy,
		magic: [][]byte{append([]byte{0xff, 0x06, 0x00, 0x00}, "sNaPpY"...)},
		newReader: func(r io.Reader) (io.Reader, error) {
			return snappy.NewReader(r), nil
		},
	},
	{
		name: fileExtensionZlib,
		magic: [][]byte{
			{0x78, 0x01}, {0x78, 0x5e}, {0x78, 0x9c}, {0x78, 0xda},
			{0x78, 0x20}, {0x78, 0x7d}, {0x78, 0xbb}, {0x78, 0xf9},
		},
		newReader: func(r io.Reader) (io.Reader, error) {
			return zlib.NewReader(r)
		},
	},
	{
		name: fileExtensionBrotli,
		newReader: func(r io.Reader) (io.Reader, error) {
			return brotli.NewReader(r), nil
		},
	},
	{
		name:         fileExtensionLzma,
		tarShorthand: fileExtensionTarLzma,
		newReader: func(r io.Reader) (io.Reader, error) {
			return lzma.NewReader(r)
		},
	},
}

// bzip2Magic returns the bzip2 headers for the block sizes 1 to 9.
func bzip2Magic() [][]byte {
	magic := make([][]byte, 0, 9)
	for level := byte('1'); level <= '9'; level++ {
		magic = append(magic, []byte{'B', 'Z', 'h', level})
	}
	return magic
}

// lookupCodec returns the codec with name.
func lookupCodec(name string) (codec, bool) {
	for _, c := range codecs {
		if c.name == name {
			return c, true
		}
	}
	return codec{}, false
}

// isTarShorthand reports whether ext stands for tar.<codec>.
func isTarShorthand(ext string) bool {
	for _, c := range codecs {
		if c.tarShorthand != "" && c.tarShorthand == ext {
			return true
		}
	}
	return false
}

// codecFormats returns the registry entries of all codecs.
func codecFormats() []*format {
	formats := make([]*format, 0, len(codecs))
	for _, c := range codecs {
		f := &format{
			Format:     Format{Name: c.name, Extensions: c.extensions()},
			MagicBytes: c.magic,
			Open:       c.open,
		}
		if len(c.magic) > 0 {
			magic := c.magic
			f.HeaderCheck = func(header []byte) bool {
				return hasMagic(header, 0, magic)
			}
		}
		formats = append(formats, f)
	}
	return formats
}
