// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Defacto2/helper"
	"github.com/hashicorp/go-unpack/engine/command"
)

// Legacy formats that are handled by external programs.
const (
	fileExtensionArj = "arj" // Archive Robert Jung
	fileExtensionLha = "lha" // LHA by Haruyasu Yoshizaki
	fileExtensionLzh = "lzh" // LHA, alternative extension
	fileExtensionCab = "cab" // Microsoft Cabinet
	fileExtensionArc = "arc" // ARC by System Enhancement Associates
)

// wrongPasswordOutput are fragments of program output that indicate a
// missing or wrong password.
var wrongPasswordOutput = []string{
	"Wrong password",
	"Can not open encrypted archive",
}

// programArgs returns the arguments to test (dst is empty) or extract src
// with the program of f.
func programArgs(f *format, src, dst string, policy Collision) []string {
	switch f.Program {
	case command.Arc:
		if dst == "" {
			return []string{command.ArcTest, src}
		}
		return []string{command.ArcExtract, filepath.Base(src)}
	default:
		if dst == "" {
			return []string{command.Zip7Test, command.Zip7Yes, src}
		}
		existing := command.Zip7RenameExisting
		switch policy {
		case CollisionOverwrite:
			existing = command.Zip7OverwriteExisting
		case CollisionSkip:
			existing = command.Zip7SkipExisting
		}
		return []string{command.Zip7Extract, command.Zip7Yes, existing, command.Zip7OutputDir + dst, src}
	}
}

// runProgram tests src, or extracts it to dst if dst is not empty, with the
// external program of f.
func runProgram(ctx context.Context, cfg *Config, f *format, src, dst string, policy Collision) error {
	prog, err := exec.LookPath(f.Program)
	if err != nil {
		return &Error{Kind: KindFormat, Err: fmt.Errorf("%w: %s", ErrProgramMissing, f.Program)}
	}

	// arc cannot extract to a target directory, so it runs inside dst on a copy of src
	workDir := ""
	if f.Program == command.Arc && dst != "" {
		srcInDst := filepath.Join(dst, filepath.Base(src))
		if _, err := helper.Duplicate(src, srcInDst); err != nil {
			return &Error{Kind: KindTarget, Err: fmt.Errorf("duplicate %s: %w", src, err)}
		}
		defer os.Remove(srcInDst)
		workDir = dst
	}

	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(ctx, cfg.ProgramTimeout())
	defer cancel()
	args := programArgs(f, src, dst, policy)
	cfg.Logger().Debug("run program", "program", prog, "args", args)
	cmd := exec.CommandContext(ctx, prog, args...)
	cmd.Dir = workDir
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		out := strings.TrimSpace(buf.String())
		for _, s := range wrongPasswordOutput {
			if strings.Contains(out, s) {
				return &Error{Kind: KindWrongPassword, Err: fmt.Errorf("%w: %s: %q", ErrProgram, prog, out)}
			}
		}
		if out != "" {
			return &Error{Kind: KindProgram, Err: fmt.Errorf("%w: %s: %q", ErrProgram, prog, out)}
		}
		return &Error{Kind: KindProgram, Err: fmt.Errorf("%w: %s", err, prog)}
	}
	return nil
}
