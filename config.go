// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config holds all options of a recursive unpack run. The options are
// adjusted using the option pattern style.
//
// The default configuration skips encrypted archives, renames colliding
// destinations, keeps source archives and processes one path at a time.
type Config struct {
	// collision is the policy applied if the destination directory of an
	// archive already exists. It is passed on to the engine for colliding files.
	collision CollisionPolicy

	// concurrency is the number of workers that process paths
	concurrency int

	// credentials is asked for a password if encryptedAction is manually
	credentials CredentialSource

	// defaultPasswords are tried in order if encryptedAction is default
	defaultPasswords []string

	// encryptedAction decides what happens with password protected archives
	encryptedAction EncryptedAction

	// logger stream for the unpacker
	logger logger

	// removeSource deletes an archive after it has been extracted successfully
	removeSource bool

	// sniffUnknownExtensions hands files with an unknown extension to format detection
	sniffUnknownExtensions bool

	// summaryHook is called once with the summary of a run
	summaryHook SummaryHook
}

const (
	defaultCollision              = CollisionRename // keep existing directories and pick a fresh name
	defaultConcurrency            = 1               // strict listing order
	defaultEncryptedAction        = EncryptedSkip   // do not guess passwords
	defaultRemoveSource           = false           // keep archives
	defaultSniffUnknownExtensions = false           // only known extensions are detected
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	// no operation summary hook
	defaultSummaryHook = func(ctx context.Context, s *Summary) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		collision:              defaultCollision,
		concurrency:            defaultConcurrency,
		credentials:            NoCredentials{},
		encryptedAction:        defaultEncryptedAction,
		logger:                 defaultLogger,
		removeSource:           defaultRemoveSource,
		sniffUnknownExtensions: defaultSniffUnknownExtensions,
		summaryHook:            defaultSummaryHook,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Collision returns the collision policy for destinations and files.
func (c *Config) Collision() CollisionPolicy {
	return c.collision
}

// Concurrency returns the number of workers.
func (c *Config) Concurrency() int {
	return c.concurrency
}

// Credentials returns the source for manually entered passwords.
func (c *Config) Credentials() CredentialSource {
	return c.credentials
}

// DefaultPasswords returns the passwords that are tried for encrypted archives.
func (c *Config) DefaultPasswords() []string {
	return c.defaultPasswords
}

// EncryptedAction returns what happens with password protected archives.
func (c *Config) EncryptedAction() EncryptedAction {
	return c.encryptedAction
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// RemoveSource returns true if archives are deleted after a successful extraction.
func (c *Config) RemoveSource() bool {
	return c.removeSource
}

// SniffUnknownExtensions returns true if files without a known archive
// extension are checked by their content.
func (c *Config) SniffUnknownExtensions() bool {
	return c.sniffUnknownExtensions
}

// SummaryHook returns the summary hook.
func (c *Config) SummaryHook() SummaryHook {
	return c.summaryHook
}

// validate checks the policies, which can be set to arbitrary values.
func (c *Config) validate() error {
	switch c.collision {
	case CollisionRename, CollisionOverwrite, CollisionSkip:
	default:
		return fmt.Errorf("%w: collision %d", ErrInvalidPolicy, int(c.collision))
	}
	switch c.encryptedAction {
	case EncryptedSkip, EncryptedDefault, EncryptedManually:
	default:
		return fmt.Errorf("%w: encrypted action %d", ErrInvalidPolicy, int(c.encryptedAction))
	}
	return nil
}

// WithCollisionPolicy options pattern function to set the policy for
// existing destinations.
func WithCollisionPolicy(policy CollisionPolicy) ConfigOption {
	return func(c *Config) {
		c.collision = policy
	}
}

// WithConcurrency options pattern function to set the number of workers.
// Values below 1 are treated as 1.
func WithConcurrency(n int) ConfigOption {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// WithCredentialSource options pattern function to set the source of
// manually entered passwords.
func WithCredentialSource(cs CredentialSource) ConfigOption {
	return func(c *Config) {
		if cs == nil {
			cs = NoCredentials{}
		}
		c.credentials = cs
	}
}

// WithDefaultPasswords options pattern function to set the passwords that
// are tried, in order, if the encrypted action is [EncryptedDefault].
func WithDefaultPasswords(passwords ...string) ConfigOption {
	return func(c *Config) {
		c.defaultPasswords = append([]string(nil), passwords...)
	}
}

// WithEncryptedAction options pattern function to set what happens with
// password protected archives.
func WithEncryptedAction(action EncryptedAction) ConfigOption {
	return func(c *Config) {
		c.encryptedAction = action
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithRemoveSource options pattern function to delete archives after a
// successful extraction.
func WithRemoveSource(remove bool) ConfigOption {
	return func(c *Config) {
		c.removeSource = remove
	}
}

// WithSniffUnknownExtensions options pattern function to detect archives by
// their content, even if the file extension is not a known archive extension.
func WithSniffUnknownExtensions(sniff bool) ConfigOption {
	return func(c *Config) {
		c.sniffUnknownExtensions = sniff
	}
}

// WithSummaryHook options pattern function to set a hook that consumes the
// summary of a run.
func WithSummaryHook(hook SummaryHook) ConfigOption {
	return func(c *Config) {
		c.summaryHook = hook
	}
}
