// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	unpack "github.com/hashicorp/go-unpack"
	"github.com/hashicorp/go-unpack/engine"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// errStrict is returned by execute if --strict is set and archives were
// skipped or failed.
var errStrict = errors.New("not all archives were unpacked")

// CLI are the cli parameters for the unpack binary
type CLI struct {
	Paths            []string         `arg:"" optional:"" name:"path" help:"Archives or directories to unpack." type:"path"`
	InputPaths       []string         `short:"i" help:"Archives or directories to unpack." type:"path"`
	Remove           bool             `short:"r" help:"Remove archives after successful extraction."`
	PasswordAction   string           `name:"password-protected-action" aliases:"pa" enum:"skip,default,manually" default:"skip" help:"Action for password protected archives (${enum})."`
	DefaultPasswords []string         `name:"default-passwords" aliases:"pwds,pwd" help:"Passwords tried in order for password protected archives."`
	ExistingAction   string           `name:"existing-directory-action" short:"e" enum:"rename,overwrite,skip" default:"rename" help:"Action if the extraction directory exists (${enum})."`
	LogLevel         int              `name:"log-level" short:"l" enum:"-1,0,1,2" default:"0" help:"Log level: -1 quiet, 0 errors, 1 info, 2 debug."`
	Jobs             int              `short:"j" default:"1" help:"Number of archives that are unpacked in parallel."`
	Strict           bool             `help:"Exit with an error if an archive was skipped or failed."`
	Config           kong.ConfigFlag  `help:"Path to a YAML or JSON config file."`
	Version          kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`

	ContinueOnUnsupported bool          `short:"C" help:"Skip unsupported entries like devices instead of failing the archive."`
	DenySymlinks          bool          `short:"D" help:"Deny symlink extraction."`
	DropFileAttributes    bool          `help:"Ignore modes and times of archive entries."`
	FollowSymlinks        bool          `short:"F" help:"[Dangerous!] Follow symlinks to directories during extraction."`
	MaxDictionarySize     int64         `optional:"" default:"-1" help:"Maximum rar decoder window (in bytes). (decoder default: -1)"`
	MaxExtractionSize     int64         `optional:"" default:"1073741824" help:"Maximum extraction size per archive (in bytes). (disable check: -1)"`
	MaxFiles              int64         `optional:"" default:"100000" help:"Maximum entries extracted per archive. (disable check: -1)"`
	MaxInputSize          int64         `optional:"" default:"1073741824" help:"Maximum archive size (in bytes). (disable check: -1)"`
	NoPrograms            bool          `help:"Disable formats that need external programs (arj, lha, cab, arc)."`
	NoUntar               bool          `help:"Keep the tar of a compressed tar, e.g. .tar.gz, instead of extracting it."`
	ProgramTimeout        time.Duration `default:"10m" help:"Maximum run time of an external program."`
}

// Validate is called by kong after parsing.
func (c *CLI) Validate() error {
	if len(c.inputs()) == 0 {
		return errors.New("at least one path is required")
	}
	return nil
}

// inputs returns the positional and the --input-paths paths.
func (c *CLI) inputs() []string {
	return append(append([]string{}, c.Paths...), c.InputPaths...)
}

// Run the entrypoint into go-unpack as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("unpack"),
		kong.Description("Recursively unpack archives and the archives inside them"),
		kong.UsageOnError(),
		kong.Configuration(viperLoader, defaultConfigFiles()...),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx, &cli, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "unpack: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// execute unpacks all inputs of cli and prints the results to out.
func execute(ctx context.Context, cli *CLI, out io.Writer) error {
	logger := newLogger(cli.LogLevel)
	eng := newEngine(cli, logger)

	cfg, err := newConfig(cli, logger)
	if err != nil {
		return err
	}

	// check all inputs before any work starts
	inputs := cli.inputs()
	for _, p := range inputs {
		info, err := os.Stat(p)
		if err != nil {
			return errors.Wrapf(err, "invalid input %s", p)
		}
		if !info.IsDir() && !unpack.IsArchive(eng, p) {
			return errors.Errorf("invalid input %s: neither a directory nor an archive", p)
		}
	}

	var total unpack.Summary
	for _, p := range inputs {
		res, err := unpack.Unpack(ctx, eng, p, cfg)
		add(&total, &res.Summary)
		if err != nil {
			return errors.Wrapf(err, "cannot unpack %s", p)
		}
		if cli.LogLevel >= 1 {
			printResult(out, p, res)
		}
	}

	if cli.LogLevel >= 1 {
		printSummary(out, &total)
	}
	if cli.Strict && total.Failed+total.Skipped > 0 {
		return errors.Wrapf(errStrict, "%s failed, %d skipped", english.Plural(int(total.Failed), "archive", ""), total.Skipped)
	}
	return nil
}

// newEngine translates the cli flags into the archive engine. The engine
// only logs at debug level.
func newEngine(cli *CLI, logger *slog.Logger) *engine.Engine {
	opts := []engine.ConfigOption{
		engine.WithContinueOnUnsupportedFiles(cli.ContinueOnUnsupported),
		engine.WithDenySymlinkExtraction(cli.DenySymlinks),
		engine.WithDropFileAttributes(cli.DropFileAttributes),
		engine.WithInsecureTraverseSymlinks(cli.FollowSymlinks),
		engine.WithMaxDictionarySize(cli.MaxDictionarySize),
		engine.WithMaxExtractionSize(cli.MaxExtractionSize),
		engine.WithMaxFiles(cli.MaxFiles),
		engine.WithMaxInputSize(cli.MaxInputSize),
		engine.WithNoPrograms(cli.NoPrograms),
		engine.WithNoUntarAfterDecompression(cli.NoUntar),
		engine.WithProgramTimeout(cli.ProgramTimeout),
	}
	if cli.LogLevel >= 2 {
		opts = append(opts, engine.WithLogger(logger))
	}
	return engine.New(opts...)
}

// newConfig translates the cli flags into the unpack configuration.
func newConfig(cli *CLI, logger *slog.Logger) (*unpack.Config, error) {
	action, err := unpack.ParseEncryptedAction(cli.PasswordAction)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --password-protected-action")
	}
	collision, err := unpack.ParseCollisionPolicy(cli.ExistingAction)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --existing-directory-action")
	}

	return unpack.NewConfig(
		unpack.WithCollisionPolicy(collision),
		unpack.WithConcurrency(cli.Jobs),
		unpack.WithCredentialSource(unpack.NewTerminalCredentials(nil, nil)),
		unpack.WithDefaultPasswords(cli.DefaultPasswords...),
		unpack.WithEncryptedAction(action),
		unpack.WithLogger(logger),
		unpack.WithRemoveSource(cli.Remove),
	), nil
}

// newLogger returns the logger for level. Below 0 nothing is logged.
func newLogger(level int) *slog.Logger {
	if level < 0 {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	charmLevel := log.ErrorLevel
	switch level {
	case 1:
		charmLevel = log.InfoLevel
	case 2:
		charmLevel = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           charmLevel,
		Prefix:          "unpack",
		ReportTimestamp: level >= 2,
	})
	return slog.New(handler)
}

// viperLoader reads a YAML or JSON config file. Keys are the long flag names,
// with dashes or underscores.
func viperLoader(r io.Reader) (kong.Resolver, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "cannot read config file")
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (interface{}, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v.IsSet(key) {
				return v.Get(key), nil
			}
		}
		return nil, nil
	}), nil
}

// defaultConfigFiles returns the config files that are read if they exist.
func defaultConfigFiles() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(dir, "unpack", "config.yaml"),
		filepath.Join(dir, "unpack", "config.json"),
	}
}

// add adds the counters of s to total.
func add(total, s *unpack.Summary) {
	total.Directories += s.Directories
	total.Archives += s.Archives
	total.Extracted += s.Extracted
	total.Skipped += s.Skipped
	total.Failed += s.Failed
	total.Missing += s.Missing
	total.Removed += s.Removed
	total.Duration += s.Duration
	if s.LastError != nil {
		total.LastError = s.LastError
	}
}

func printResult(out io.Writer, path string, res unpack.Result) {
	switch res.Outcome {
	case unpack.OutcomeExtracted:
		fmt.Fprintf(out, "%s: extracted to %s\n", path, res.Path)
	case unpack.OutcomeDirectory:
		fmt.Fprintf(out, "%s: unpacked %s\n", path, english.Plural(int(res.Summary.Extracted), "archive", ""))
	default:
		fmt.Fprintf(out, "%s: %s\n", path, res.Outcome)
	}
}

func printSummary(out io.Writer, s *unpack.Summary) {
	fmt.Fprintf(out, "%s in %s directories, %s extracted, %s skipped, %s failed, %s removed (%s)\n",
		english.Plural(int(s.Archives), "archive", ""),
		humanize.Comma(s.Directories),
		humanize.Comma(s.Extracted),
		humanize.Comma(s.Skipped),
		humanize.Comma(s.Failed),
		humanize.Comma(s.Removed),
		s.Duration.Round(time.Millisecond),
	)
	if s.Missing > 0 {
		fmt.Fprintf(out, "%s not found\n", english.Plural(int(s.Missing), "path", ""))
	}
	if s.LastError != nil {
		fmt.Fprintf(out, "last error: %v\n", s.LastError)
	}
}
