// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"time"
)

// unlimited disables a limit.
const unlimited = -1

// limits are the resource limits of a single extraction.
type limits struct {
	dictionarySize int64 // rar decoder window, unlimited means decoder default
	extractionSize int64 // bytes written over all entries
	files          int64 // files, directories and symlinks
	inputSize      int64 // bytes read from the archive
}

// exceeded reports whether v is over limit.
func exceeded(limit, v int64) bool {
	return limit != unlimited && v > limit
}

// modes are the permissions of paths that carry no mode in the archive.
type modes struct {
	dir  fs.FileMode
	file fs.FileMode
}

// symlinkPolicy controls how symlinks in archives and on disk are treated.
type symlinkPolicy struct {
	deny     bool // entries of type symlink are unsupported
	traverse bool // existing symlinks to directories may be followed
}

// ConfigOption adjusts a [Config].
type ConfigOption func(*Config)

// Config of an [Engine]. Without options, the engine refuses path traversal
// and symlinks escaping the destination, and stops after 1 GiB of input or
// output or 100k entries.
type Config struct {
	limits   limits
	modes    modes
	symlinks symlinkPolicy

	dropAttributes  bool
	skipUnsupported bool
	noPrograms      bool
	noUntar         bool
	programTimeout  time.Duration

	logger        logger
	target        Target
	telemetryHook TelemetryHook
}

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

	noopTelemetryHook TelemetryHook = func(context.Context, *TelemetryData) {}
)

// NewConfig returns the default configuration adjusted by opts.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		limits: limits{
			dictionarySize: unlimited,
			extractionSize: 1 << 30,
			files:          100_000,
			inputSize:      1 << 30,
		},
		modes: modes{
			dir:  0750,
			file: 0640,
		},
		programTimeout: 10 * time.Minute,
		logger:         discardLogger,
		target:         NewTargetDisk(),
		telemetryHook:  noopTelemetryHook,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckMaxFiles returns [ErrMaxFilesExceeded] if counter is over the file limit.
func (c *Config) CheckMaxFiles(counter int64) error {
	if exceeded(c.limits.files, counter) {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize returns [ErrMaxExtractionSizeExceeded] if size is over
// the extraction size limit.
func (c *Config) CheckExtractionSize(size int64) error {
	if exceeded(c.limits.extractionSize, size) {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// ContinueOnUnsupportedFiles reports whether entries like devices and fifos
// are skipped instead of failing the extraction.
func (c *Config) ContinueOnUnsupportedFiles() bool { return c.skipUnsupported }

// CustomCreateDirMode is the mode of directories missing in the archive.
func (c *Config) CustomCreateDirMode() fs.FileMode { return c.modes.dir }

// CustomDecompressFileMode is the mode of the file written for a compressed stream.
func (c *Config) CustomDecompressFileMode() fs.FileMode { return c.modes.file }

// DenySymlinkExtraction reports whether symlink entries are unsupported.
func (c *Config) DenySymlinkExtraction() bool { return c.symlinks.deny }

// DropFileAttributes reports whether modes and times of entries are ignored.
func (c *Config) DropFileAttributes() bool { return c.dropAttributes }

// Logger of the engine.
func (c *Config) Logger() logger { return c.logger }

// MaxDictionarySize limits the rar decoder window.
func (c *Config) MaxDictionarySize() int64 { return c.limits.dictionarySize }

// MaxExtractionSize limits the bytes written over all entries.
func (c *Config) MaxExtractionSize() int64 { return c.limits.extractionSize }

// MaxFiles limits the number of entries.
func (c *Config) MaxFiles() int64 { return c.limits.files }

// MaxInputSize limits the bytes read from the archive.
func (c *Config) MaxInputSize() int64 { return c.limits.inputSize }

// NoPrograms reports whether formats handled by external programs are disabled.
func (c *Config) NoPrograms() bool { return c.noPrograms }

// NoUntarAfterDecompression reports whether a decompressed tar is kept as file.
func (c *Config) NoUntarAfterDecompression() bool { return c.noUntar }

// ProgramTimeout limits the run time of external programs.
func (c *Config) ProgramTimeout() time.Duration { return c.programTimeout }

// Target entries are written to.
func (c *Config) Target() Target { return c.target }

// TelemetryHook is called after each extraction.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return noopTelemetryHook
	}
	return c.telemetryHook
}

// TraverseSymlinks reports whether existing symlinks to directories may be
// followed while writing entries.
func (c *Config) TraverseSymlinks() bool { return c.symlinks.traverse }

// WithContinueOnUnsupportedFiles skips unsupported entries instead of failing.
// Symlinks count as unsupported if [WithDenySymlinkExtraction] is set.
func WithContinueOnUnsupportedFiles(skip bool) ConfigOption {
	return func(c *Config) { c.skipUnsupported = skip }
}

// WithCustomCreateDirMode sets the mode of directories missing in the
// archive. The umask applies.
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) { c.modes.dir = mode }
}

// WithCustomDecompressFileMode sets the mode of the file written for a
// compressed stream. The umask applies.
func WithCustomDecompressFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) { c.modes.file = mode }
}

// WithDenySymlinkExtraction treats symlink entries as unsupported.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) { c.symlinks.deny = deny }
}

// WithDropFileAttributes ignores modes and times of entries.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) { c.dropAttributes = drop }
}

// WithInsecureTraverseSymlinks follows existing symlinks to directories while
// writing entries. Only use it for trusted archives.
func WithInsecureTraverseSymlinks(traverse bool) ConfigOption {
	return func(c *Config) { c.symlinks.traverse = traverse }
}

// WithLogger sets the logger.
func WithLogger(l logger) ConfigOption {
	return func(c *Config) { c.logger = l }
}

// WithMaxDictionarySize limits the rar decoder window. -1 keeps the decoder default.
func WithMaxDictionarySize(size int64) ConfigOption {
	return func(c *Config) { c.limits.dictionarySize = size }
}

// WithMaxExtractionSize limits the bytes written over all entries. -1 disables the check.
func WithMaxExtractionSize(size int64) ConfigOption {
	return func(c *Config) { c.limits.extractionSize = size }
}

// WithMaxFiles limits the number of files, directories and symlinks. -1
// disables the check.
func WithMaxFiles(n int64) ConfigOption {
	return func(c *Config) { c.limits.files = n }
}

// WithMaxInputSize limits the bytes read from the archive. -1 disables the check.
func WithMaxInputSize(size int64) ConfigOption {
	return func(c *Config) { c.limits.inputSize = size }
}

// WithNoPrograms disables the formats handled by external programs.
func WithNoPrograms(disable bool) ConfigOption {
	return func(c *Config) { c.noPrograms = disable }
}

// WithNoUntarAfterDecompression keeps a decompressed tar, e.g. of a .tar.gz,
// as a file instead of extracting it.
func WithNoUntarAfterDecompression(disable bool) ConfigOption {
	return func(c *Config) { c.noUntar = disable }
}

// WithProgramTimeout limits the run time of external programs. Values <= 0
// are ignored.
func WithProgramTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		if timeout > 0 {
			c.programTimeout = timeout
		}
	}
}

// WithTarget sets the [Target] entries are written to. nil is ignored.
func WithTarget(t Target) ConfigOption {
	return func(c *Config) {
		if t != nil {
			c.target = t
		}
	}
}

// WithTelemetryHook sets the hook called after each extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) { c.telemetryHook = hook }
}
