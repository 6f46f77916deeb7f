// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unpack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-unpack/engine"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=engine_mock_test.go -package=unpack_test . Engine

// Engine is the archive engine used by [Unpack]. It is implemented by
// [engine.Engine].
type Engine interface {
	DetectFormat(path string) (engine.Format, error)
	ValidateFormat(f engine.Format) error
	TestIntegrity(ctx context.Context, path string, password string) error
	Extract(ctx context.Context, path string, dst string, opts engine.ExtractOptions) error
}

// Outcome is the result of processing a single path.
type Outcome int

const (
	// OutcomeNone means the path is neither a directory nor an archive.
	OutcomeNone Outcome = iota

	// OutcomeDirectory means the path is a directory whose children were processed.
	OutcomeDirectory

	// OutcomeExtracted means the path is an archive that was extracted.
	OutcomeExtracted

	// OutcomeSkipped means the path is an archive that was not extracted,
	// because no password was found or the destination exists.
	OutcomeSkipped

	// OutcomeFailed means the extraction of the archive failed.
	OutcomeFailed
)

// String returns the name of o.
func (o Outcome) String() string {
	switch o {
	case OutcomeDirectory:
		return "directory"
	case OutcomeExtracted:
		return "extracted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// Result is returned by [Unpack].
type Result struct {
	// Path is the directory for [OutcomeDirectory], the extraction
	// directory for [OutcomeExtracted] and empty otherwise.
	Path string

	// Outcome is the outcome of the path [Unpack] was called with.
	Outcome Outcome

	// Summary covers the whole tree.
	Summary Summary
}

// Unpack extracts the archive at path, or all archives below the directory
// at path, and then every archive found in the extracted content, until no
// archives are left. Failures of single archives are logged and counted in
// the summary; only an invalid configuration and the cancellation of ctx
// are returned as error. If cfg is nil, the defaults of [NewConfig] are used.
func Unpack(ctx context.Context, eng Engine, path string, cfg *Config) (Result, error) {
	if eng == nil {
		return Result{}, ErrNilEngine
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	u := &unpacker{
		eng:   eng,
		cfg:   cfg,
		stack: newWorkStack(),
		locks: newDirLocks(),
	}
	start := now()
	u.stack.push(workItem{path: path, root: true})

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Concurrency(); i++ {
		g.Go(func() error {
			return u.work(gctx)
		})
	}
	err := g.Wait()

	res := u.root
	res.Summary = u.summary
	res.Summary.Duration = now().Sub(start)
	cfg.SummaryHook()(ctx, &res.Summary)
	return res, err
}

// workItem is a path waiting to be processed. Only the root follows symlinks.
type workItem struct {
	path string
	root bool
}

// unpacker holds the state of one run of [Unpack].
type unpacker struct {
	eng   Engine
	cfg   *Config
	stack *workStack
	locks *dirLocks

	// promptMu serializes password prompts
	promptMu sync.Mutex

	mu      sync.Mutex
	summary Summary

	// root is written once by the worker that processes the root item
	root Result
}

// work processes items until the stack is drained or ctx is canceled.
func (u *unpacker) work(ctx context.Context) error {
	for {
		item, ok := u.stack.pop()
		if !ok {
			return nil
		}
		res, err := u.visit(ctx, item)
		if item.root {
			u.root = res
		}
		u.stack.done()
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			u.stack.abort()
			return err
		}
	}
}

// record updates the summary.
func (u *unpacker) record(update func(*Summary)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	update(&u.summary)
}

// visit processes a single path.
func (u *unpacker) visit(ctx context.Context, item workItem) (Result, error) {
	log := u.cfg.Logger()

	var info fs.FileInfo
	var err error
	if item.root {
		info, err = os.Stat(item.path)
	} else {
		info, err = os.Lstat(item.path)
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Error("path does not exist", "path", item.path)
		u.record(func(s *Summary) { s.Missing++ })
		return Result{}, nil

	case err != nil:
		log.Error("cannot access path", "path", item.path, "error", err)
		u.record(func(s *Summary) { s.LastError = err })
		return Result{}, nil

	case info.IsDir():
		u.visitDir(item.path)
		return Result{Path: item.path, Outcome: OutcomeDirectory}, nil

	case info.Mode().IsRegular() && isArchive(u.eng, item.path, u.cfg.SniffUnknownExtensions()):
		return u.visitArchive(ctx, item.path)

	case info.Mode()&fs.ModeSymlink != 0:
		log.Debug("skip symlink", "path", item.path)
	}
	return Result{}, nil
}

// visitDir pushes the children of dir, so that they are popped in listing order.
func (u *unpacker) visitDir(dir string) {
	u.record(func(s *Summary) { s.Directories++ })
	entries, err := os.ReadDir(dir)
	if err != nil {
		u.cfg.Logger().Error("cannot list directory", "path", dir, "error", err)
		u.record(func(s *Summary) { s.LastError = err })
	}
	items := make([]workItem, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		items = append(items, workItem{path: filepath.Join(dir, entries[i].Name())})
	}
	u.stack.push(items...)
}

// visitArchive runs the archive pipeline: probe, find a password, resolve
// the destination, extract, clean up and queue the extracted directory. The
// pipeline holds the lock of the parent directory.
func (u *unpacker) visitArchive(ctx context.Context, path string) (Result, error) {
	unlock := u.locks.lock(filepath.Dir(path))
	defer unlock()

	log := u.cfg.Logger()
	u.record(func(s *Summary) { s.Archives++ })
	desired := DefaultTarget(path)

	// find out if a password is needed
	state := probeEncryption(ctx, u.eng, path, log)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	log.Debug("probed archive", "path", path, "encryption", state)

	var password string
	if state == Encrypted {
		pw, ok := u.choosePassword(ctx, path)
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !ok {
			return u.skip(path, "no valid password"), nil
		}
		password = pw
	}

	// resolve destination
	if isDir(desired) {
		log.Info("destination exists", "path", desired, "policy", u.cfg.Collision())
	}
	target, err := ResolveTarget(desired, u.cfg.Collision())
	if isAbort(err) {
		return u.skip(path, "destination exists"), nil
	}
	if err != nil {
		return u.fail(path, err), nil
	}

	// extract, a path that existed before is not ours to clean up
	_, statErr := os.Lstat(target)
	preexisting := statErr == nil
	opts := engine.ExtractOptions{Password: password, Collision: u.cfg.Collision()}
	log.Info("extract archive", "path", path, "target", target)
	if err := u.eng.Extract(ctx, path, target, opts); err != nil {
		if !preexisting {
			if rmErr := os.RemoveAll(target); rmErr != nil {
				log.Error("cannot remove destination", "path", target, "error", rmErr)
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return u.fail(path, err), nil
	}
	u.record(func(s *Summary) { s.Extracted++ })

	// remove source
	if u.cfg.RemoveSource() {
		if err := os.Remove(path); err != nil {
			log.Error("cannot remove archive", "path", path, "error", err)
		} else {
			u.record(func(s *Summary) { s.Removed++ })
		}
	}

	// unpack nested archives
	u.stack.push(workItem{path: target})
	return Result{Path: target, Outcome: OutcomeExtracted}, nil
}

// choosePassword finds the password of an encrypted archive according to the
// encrypted action. The password is verified before it is returned.
func (u *unpacker) choosePassword(ctx context.Context, path string) (string, bool) {
	log := u.cfg.Logger()

	var password string
	switch u.cfg.EncryptedAction() {
	case EncryptedManually:
		u.promptMu.Lock()
		pw, err := u.cfg.Credentials().Password(ctx, path)
		u.promptMu.Unlock()
		if err != nil {
			log.Error("no password", "path", path, "error", err)
			return "", false
		}
		password = pw

	case EncryptedDefault:
		found := false
		for _, pw := range u.cfg.DefaultPasswords() {
			if err := u.eng.TestIntegrity(ctx, path, pw); err == nil {
				password, found = pw, true
				break
			}
		}
		if !found {
			return "", false
		}

	default:
		return "", false
	}

	if err := u.eng.TestIntegrity(ctx, path, password); err != nil {
		log.Error("password does not open archive", "path", path, "error", err)
		return "", false
	}
	return password, true
}

// skip counts path as skipped.
func (u *unpacker) skip(path string, reason string) Result {
	u.cfg.Logger().Info("skip archive", "path", path, "reason", reason)
	u.record(func(s *Summary) { s.Skipped++ })
	return Result{Outcome: OutcomeSkipped}
}

// fail counts path as failed.
func (u *unpacker) fail(path string, err error) Result {
	err = fmt.Errorf("cannot unpack %s: %w", path, err)
	u.cfg.Logger().Error("cannot unpack archive", "path", path, "error", err)
	u.record(func(s *Summary) {
		s.Failed++
		s.LastError = err
	})
	return Result{Outcome: OutcomeFailed}
}

// workStack is the list of paths waiting to be processed, shared by all
// workers. pending counts pushed items that are not done yet.
type workStack struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []workItem
	pending int
	aborted bool
}

func newWorkStack() *workStack {
	s := &workStack{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// push adds items; the last one is popped first.
func (s *workStack) push(items ...workItem) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	s.pending += len(items)
	s.cond.Broadcast()
}

// pop waits for the next item. ok is false if all work is done or aborted.
func (s *workStack) pop() (workItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.items) == 0 && s.pending > 0 && !s.aborted {
		s.cond.Wait()
	}
	if s.aborted || len(s.items) == 0 {
		return workItem{}, false
	}
	item := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return item, true
}

// done marks a popped item as processed.
func (s *workStack) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		s.cond.Broadcast()
	}
}

// abort wakes up all waiting workers and stops handing out items.
func (s *workStack) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
	s.cond.Broadcast()
}

// dirLocks holds a mutex per directory.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: map[string]*sync.Mutex{}}
}

// lock locks dir and returns the unlock function.
func (d *dirLocks) lock(dir string) func() {
	d.mu.Lock()
	l, ok := d.locks[dir]
	if !ok {
		l = &sync.Mutex{}
		d.locks[dir] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}
