// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// handleError increases the error counter, sets the latest error and
// returns it classified as kind.
func handleError(td *TelemetryData, kind Kind, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
	return &Error{Kind: kind, Err: td.LastExtractionError}
}

// limitKind returns KindLimit for limit violations and fallback otherwise.
func limitKind(err error, fallback Kind) Kind {
	if errors.Is(err, ErrMaxExtractionSizeExceeded) || errors.Is(err, ErrMaxInputSizeExceeded) || errors.Is(err, ErrMaxFilesExceeded) {
		return KindLimit
	}
	return fallback
}

// verify reads every entry of src to the end without writing anything. It
// fails with the first entry that cannot be read. Nothing is written, so
// only the input limit applies.
func verify(ctx context.Context, src archiveWalker, cfg *Config, td *TelemetryData) error {
	cfg.Logger().Debug("start verification", "type", src.Type())
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return handleError(td, KindUnknown, "context error", err)
		}

		// get next file
		ae, err := src.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return handleError(td, classifyReadError(src, nil, err), "error reading", err)
		case ae == nil:
			continue
		}

		if !ae.IsRegular() {
			continue
		}

		// read content, the decoder checks checksums and passwords
		fin, err := ae.Open()
		if err != nil {
			return handleError(td, classifyReadError(src, ae, err), "failed to open file", err)
		}
		n, err := io.Copy(io.Discard, fin)
		fin.Close()
		td.ExtractionSize += n
		if err != nil {
			return handleError(td, limitKind(err, classifyReadError(src, ae, err)), "failed to read file", err)
		}
		td.ExtractedFiles++
	}
}

// dirTimes remembers directory timestamps, which are applied after all
// entries are written.
type dirTimes struct {
	path  string
	atime time.Time
	mtime time.Time
}

// extract writes all entries of src below dst. Names that already exist are
// handled with policy.
func extract(ctx context.Context, src archiveWalker, dst string, policy Collision, cfg *Config, td *TelemetryData) error {
	t := cfg.Target()
	cfg.Logger().Info("start extraction", "type", src.Type(), "dst", dst)

	var objectCounter int64
	var dirs []dirTimes
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return handleError(td, KindUnknown, "context error", err)
		}

		// get next file
		ae, err := src.Next()
		switch {

		// if no more files are found exit loop
		case err == io.EOF:
			applyDirTimes(t, dirs, cfg)
			return nil

		// return any other error
		case err != nil:
			return handleError(td, classifyReadError(src, nil, err), "error reading", err)

		// skip empty entries
		case ae == nil:
			continue
		}

		// check if maximum of objects is exceeded
		objectCounter++
		if err := cfg.CheckMaxFiles(objectCounter); err != nil {
			return handleError(td, KindLimit, "max objects check failed", err)
		}

		cfg.Logger().Debug("extract", "name", ae.Name())
		switch {

		// directories are merged with existing ones
		case ae.IsDir():
			if err := createDir(t, dst, ae.Name(), ae.Mode().Perm()|0700, cfg); err != nil {
				return handleError(td, KindTarget, "failed to create safe directory", err)
			}
			dirs = append(dirs, dirTimes{filepath.Join(dst, entryPath(ae.Name())), ae.AccessTime(), ae.ModTime()})
			td.ExtractedDirs++

		// if it's a file create it
		case ae.IsRegular():
			name, overwrite, write, err := resolveEntryName(t, dst, entryPath(ae.Name()), policy)
			if err != nil {
				return handleError(td, KindTarget, "failed to resolve file name", err)
			}
			if !write {
				cfg.Logger().Info("skip existing file", "name", ae.Name())
				td.SkippedFiles++
				continue
			}
			if name != entryPath(ae.Name()) {
				cfg.Logger().Info("rename file", "name", ae.Name(), "new name", name)
				td.RenamedFiles++
			}

			// check extraction size
			if err := cfg.CheckExtractionSize(td.ExtractionSize + ae.Size()); err != nil {
				return handleError(td, KindLimit, "max extraction size exceeded", err)
			}

			// open file in archive
			fin, err := ae.Open()
			if err != nil {
				return handleError(td, classifyReadError(src, ae, err), "failed to open file", err)
			}

			// create file
			maxSize := int64(-1)
			if cfg.MaxExtractionSize() != -1 {
				maxSize = cfg.MaxExtractionSize() - td.ExtractionSize
			}
			n, err := createFile(t, dst, name, &entryReader{fin}, ae.Mode().Perm(), overwrite, maxSize, cfg)
			fin.Close()
			td.ExtractionSize += n
			if err != nil {
				return handleError(td, limitKind(err, readOrTargetKind(src, ae, err)), "failed to create file", err)
			}
			applyTimes(t.Chtimes, filepath.Join(dst, name), ae, cfg)
			td.ExtractedFiles++

		// its a symlink !!
		case ae.IsSymlink():
			if cfg.DenySymlinkExtraction() {
				if err := unsupported(td, ae, cfg); err != nil {
					return err
				}
				continue
			}
			name, overwrite, write, err := resolveEntryName(t, dst, entryPath(ae.Name()), policy)
			if err != nil {
				return handleError(td, KindTarget, "failed to resolve symlink name", err)
			}
			if !write {
				td.SkippedFiles++
				continue
			}
			if err := createSymlink(t, dst, name, ae.Linkname(), overwrite, cfg); err != nil {
				return handleError(td, KindTarget, "failed to create symlink", err)
			}
			applyTimes(t.Lchtimes, filepath.Join(dst, name), ae, cfg)
			td.ExtractedSymlinks++

		default:
			if err := unsupported(td, ae, cfg); err != nil {
				return err
			}
		}
	}
}

// unsupported counts ae as unsupported file or fails, depending on cfg.
func unsupported(td *TelemetryData, ae archiveEntry, cfg *Config) error {
	if !cfg.ContinueOnUnsupportedFiles() {
		return handleError(td, KindUnknown, "unsupported file", fmt.Errorf("%s (%s)", ae.Name(), ae.Mode().Type()))
	}
	cfg.Logger().Info("skipped unsupported file", "name", ae.Name(), "type", ae.Mode().Type())
	td.UnsupportedFiles++
	td.LastUnsupportedFile = ae.Name()
	return nil
}

// readOrTargetKind decides if a failed file creation was caused by reading
// the archive or by writing to the target.
func readOrTargetKind(src archiveWalker, ae archiveEntry, err error) Kind {
	var re *readError
	if errors.As(err, &re) {
		return classifyReadError(src, ae, re.err)
	}
	return KindTarget
}

// readError marks errors raised by the archive side of a copy.
type readError struct {
	err error
}

func (r *readError) Error() string { return r.err.Error() }
func (r *readError) Unwrap() error { return r.err }

// entryReader tags all read errors of an entry, except io.EOF, as [readError].
type entryReader struct {
	io.ReadCloser
}

func (e *entryReader) Read(p []byte) (int, error) {
	n, err := e.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		err = &readError{err}
	}
	return n, err
}

// applyTimes sets the archived timestamps of ae on path.
func applyTimes(chtimes func(string, time.Time, time.Time) error, path string, ae archiveEntry, cfg *Config) {
	if cfg.DropFileAttributes() || ae.ModTime().IsZero() {
		return
	}
	atime := ae.AccessTime()
	if atime.IsZero() {
		atime = ae.ModTime()
	}
	if err := chtimes(path, atime, ae.ModTime()); err != nil {
		cfg.Logger().Debug("cannot set file times", "path", path, "error", err)
	}
}

// applyDirTimes sets directory timestamps, deepest first.
func applyDirTimes(t Target, dirs []dirTimes, cfg *Config) {
	if cfg.DropFileAttributes() {
		return
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if d.mtime.IsZero() {
			continue
		}
		atime := d.atime
		if atime.IsZero() {
			atime = d.mtime
		}
		if err := t.Chtimes(d.path, atime, d.mtime); err != nil {
			cfg.Logger().Debug("cannot set directory times", "path", d.path, "error", err)
		}
	}
}
