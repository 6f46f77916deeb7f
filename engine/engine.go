// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"os/exec"
)

// ExtractOptions adjusts a single [Engine.Extract] call.
type ExtractOptions struct {
	// Password decrypts the archive. Leave empty for unencrypted archives.
	Password string

	// Collision is applied to entries whose name already exists in the destination.
	Collision Collision
}

// Engine detects, tests and extracts archives.
type Engine struct {
	cfg *Config
}

// New creates an [Engine] with the configuration adjusted by opts.
func New(opts ...ConfigOption) *Engine {
	return &Engine{cfg: NewConfig(opts...)}
}

// Config returns the configuration of the engine.
func (e *Engine) Config() *Config {
	return e.cfg
}

// DetectFormat identifies the format of the file at path. If the format is
// unknown, an [*Error] of kind [KindUnknownFormat] is returned.
func (e *Engine) DetectFormat(path string) (Format, error) {
	f, err := detectFormat(path)
	if err != nil {
		return Format{}, &Error{Op: "detect", Path: path, Kind: KindUnknownFormat, Err: err}
	}
	return f.Format, nil
}

// ValidateFormat checks that f can be processed, e.g. that the program it
// needs is installed.
func (e *Engine) ValidateFormat(f Format) error {
	af, ok := lookupFormat(f.Name)
	if !ok {
		return &Error{Op: "validate", Path: f.Name, Kind: KindFormat, Err: fmt.Errorf("unsupported format")}
	}
	if af.Program == "" {
		return nil
	}
	if e.cfg.NoPrograms() {
		return &Error{Op: "validate", Path: f.Name, Kind: KindFormat, Err: fmt.Errorf("external programs are disabled")}
	}
	if _, err := exec.LookPath(af.Program); err != nil {
		return &Error{Op: "validate", Path: f.Name, Kind: KindFormat, Err: fmt.Errorf("%w: %s", ErrProgramMissing, af.Program)}
	}
	return nil
}

// TestIntegrity reads the complete archive at path with password and reports
// the first problem. A non-empty password for a format without password
// support fails with [KindPasswordUnsupported].
func (e *Engine) TestIntegrity(ctx context.Context, path string, password string) error {
	return e.run(ctx, "test", path, "", ExtractOptions{Password: password})
}

// Extract writes the content of the archive at path into the directory dst,
// which is created if needed.
func (e *Engine) Extract(ctx context.Context, path string, dst string, opts ExtractOptions) error {
	return e.run(ctx, "extract", path, dst, opts)
}

// run detects the format of path and tests it (dst is empty) or extracts it.
func (e *Engine) run(ctx context.Context, op string, path string, dst string, opts ExtractOptions) error {
	// prepare telemetry data collection and emit
	td := &TelemetryData{Archive: path, Operation: op}
	defer func() { e.cfg.TelemetryHook()(ctx, td) }()
	defer captureExtractionDuration(td, now())

	// check format
	f, err := detectFormat(path)
	if err != nil {
		return newError(op, path, KindUnknownFormat, handleError(td, KindUnknownFormat, "cannot detect format", err))
	}
	td.ExtractedType = f.Name
	if err := e.ValidateFormat(f.Format); err != nil {
		return newError(op, path, KindFormat, err)
	}

	// check password support
	if opts.Password != "" && !f.Passwords {
		return &Error{Op: op, Path: path, Kind: KindPasswordUnsupported, Err: fmt.Errorf("%s archives have no password", f.Name)}
	}

	// ensure the destination exists
	if dst != "" {
		if err := e.cfg.Target().CreateDir(dst, e.cfg.CustomCreateDirMode()); err != nil {
			return newError(op, path, KindTarget, handleError(td, KindTarget, "cannot create destination", err))
		}
	}

	// delegate to external program
	if f.Open == nil {
		if err := runProgram(ctx, e.cfg, f, path, dst, opts.Collision); err != nil {
			td.ExtractionErrors++
			td.LastExtractionError = err
			return newError(op, path, KindProgram, err)
		}
		return nil
	}

	// open and walk
	w, closer, err := f.Open(ctx, e.cfg, path, opts.Password, td)
	if err != nil {
		return newError(op, path, KindCorrupt, err)
	}
	defer closer.Close()
	if dst == "" {
		err = verify(ctx, w, e.cfg, td)
	} else {
		err = extract(ctx, w, dst, opts.Collision, e.cfg, td)
	}
	if err != nil {
		return newError(op, path, KindCorrupt, err)
	}
	return nil
}
