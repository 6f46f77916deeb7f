// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// CredentialSource provides the password for an encrypted archive. It is
// used if the encrypted action is [EncryptedManually].
type CredentialSource interface {
	// Password returns the password for the archive at archivePath or
	// [ErrNoCredential].
	Password(ctx context.Context, archivePath string) (string, error)
}

// TerminalCredentials asks the operator for passwords. If the input is a
// terminal, the password is read without echo, otherwise one line is read.
type TerminalCredentials struct {
	in  *os.File
	out io.Writer

	mu     sync.Mutex
	reader *bufio.Reader
}

// NewTerminalCredentials creates a [TerminalCredentials] that prompts on
// out and reads from in. Nil values default to stderr and stdin.
func NewTerminalCredentials(in *os.File, out io.Writer) *TerminalCredentials {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &TerminalCredentials{in: in, out: out, reader: bufio.NewReader(in)}
}

// Password prompts for the password of archivePath. Reading blocks until the
// operator answers; ctx is only checked before the prompt.
func (t *TerminalCredentials) Password(ctx context.Context, archivePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "Enter [%s] password: ", archivePath)

	// read without echo
	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("cannot read password: %w", err)
		}
		return string(b), nil
	}

	// read a line
	line, err := t.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("cannot read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// StaticCredentials returns fixed passwords, for scripted runs.
type StaticCredentials struct {
	// Passwords maps archive paths to their password.
	Passwords map[string]string

	// Fallback is returned for archives without entry in Passwords. If it
	// is empty, [ErrNoCredential] is returned instead.
	Fallback string
}

// Password returns the password of archivePath.
func (s StaticCredentials) Password(_ context.Context, archivePath string) (string, error) {
	if pw, ok := s.Passwords[archivePath]; ok {
		return pw, nil
	}
	if s.Fallback != "" {
		return s.Fallback, nil
	}
	return "", ErrNoCredential
}

// NoCredentials never has a password, for headless runs.
type NoCredentials struct{}

// Password returns [ErrNoCredential].
func (NoCredentials) Password(context.Context, string) (string, error) {
	return "", ErrNoCredential
}
