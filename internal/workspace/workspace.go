// Package workspace ties a project root to its configuration, index engine,
// optional summary store and git history. The CLI opens one per command and
// the MCP server keeps one for its lifetime, so repeated builds are served
// from the engine's parse cache.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/hargabyte/ctx/internal/activity"
	"github.com/hargabyte/ctx/internal/budget"
	"github.com/hargabyte/ctx/internal/cache"
	"github.com/hargabyte/ctx/internal/config"
	ctxcontext "github.com/hargabyte/ctx/internal/context"
	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/project"
	"github.com/hargabyte/ctx/internal/walker"
)

// Options configures Open.
type Options struct {
	Root string
	// Config defaults to the config found from Root, or the defaults.
	Config *config.Config
	// Persist enables the summary store even when the config does not.
	Persist bool
	Logger  *slog.Logger
}

// Workspace is an opened project.
type Workspace struct {
	Root    string
	Config  *config.Config
	Project project.Info

	engine *index.Engine
	store  *cache.Cache
	walk   walker.Options
	logger *slog.Logger
}

// Open resolves the root and prepares the index engine. The summary store
// is opened when persistence is enabled.
func Open(opts Options) (*Workspace, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", index.ErrRootNotFound, root)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg, err = config.Load(abs)
		if err != nil {
			return nil, err
		}
	}

	ws := &Workspace{
		Root:    abs,
		Config:  cfg,
		Project: project.Detect(abs),
		logger:  logger,
	}

	if opts.Persist || cfg.Cache.Persist {
		store, err := cache.Open(cfg.CacheDir(abs))
		if err != nil {
			return nil, fmt.Errorf("opening summary store: %w", err)
		}
		ws.store = store
		logger.Debug("summary store opened", "path", store.Path())
	}

	ws.walk = walker.Options{
		Exclude:       cfg.Scan.Exclude,
		MaxFileSize:   cfg.Scan.MaxFileSize,
		NoAutoExclude: cfg.Scan.NoAutoExclude,
		Logger:        logger,
	}
	engOpts := index.Options{
		Walk:      ws.walk,
		Languages: cfg.Languages(),
		Workers:   cfg.Scan.Workers,
		Logger:    logger,
	}
	if ws.store != nil {
		engOpts.Store = ws.store
	}
	ws.engine, err = index.New(engOpts)
	if err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

// Index builds the index of the workspace root.
func (w *Workspace) Index(ctx context.Context) (*index.Index, error) {
	idx, err := w.engine.Build(ctx, w.Root)
	if err != nil {
		return nil, err
	}
	for _, fe := range idx.Errors {
		w.logger.Debug("file skipped", "path", fe.Path, "error", fe.Err)
	}
	return idx, nil
}

// Files walks the root with the same filters as Index, without parsing,
// and returns the entries sorted by path.
func (w *Workspace) Files() ([]walker.Entry, error) {
	wk, err := walker.New(w.Root, w.walk)
	if err != nil {
		return nil, err
	}
	entries := wk.Collect()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	for _, d := range wk.Diagnostics() {
		w.logger.Debug("file skipped", "path", d.Path, "error", d.Err)
	}
	return entries, nil
}

// Engine returns the index engine.
func (w *Workspace) Engine() *index.Engine { return w.engine }

// Store returns the summary store, or nil when persistence is off.
func (w *Workspace) Store() *cache.Cache { return w.store }

// Activity reads recent history. Outside a git repository, or when git
// fails, it returns nil facts, which report no activity.
func (w *Workspace) Activity(ctx context.Context) *activity.Facts {
	commits, err := activity.GitLog(ctx, w.Root, w.Config.Activity.CochangeCommits)
	if err != nil {
		if !errors.Is(err, activity.ErrNotGitRepo) {
			w.logger.Warn("reading git history failed", "error", err)
		}
		return nil
	}
	return activity.FromCommits(commits, w.Config.Activity.WindowCommits)
}

// Status reports the branch state, or nil outside a git repository.
func (w *Workspace) Status(ctx context.Context) *activity.Status {
	st, err := activity.GitStatus(ctx, w.Root)
	if err != nil {
		if !errors.Is(err, activity.ErrNotGitRepo) {
			w.logger.Warn("reading git status failed", "error", err)
		}
		return nil
	}
	return st
}

// ContextOptions derives context assembly options from the config. A
// positive budget overrides the configured one.
func (w *Workspace) ContextOptions(ctx context.Context, tokens int) (ctxcontext.Options, error) {
	est, err := budget.ParseEstimator(w.Config.Context.Estimator)
	if err != nil {
		return ctxcontext.Options{}, err
	}
	opts := ctxcontext.DefaultOptions()
	opts.Estimator = est
	opts.Budget = w.Config.Context.Budget
	if tokens > 0 {
		opts.Budget = tokens
	}
	if w.Config.Context.MaxFiles != 0 {
		opts.MaxFiles = w.Config.Context.MaxFiles
	}
	if w.Config.Context.MaxSymbols != 0 {
		opts.MaxSymbols = w.Config.Context.MaxSymbols
	}
	opts.Project = w.Project
	opts.Git = w.Status(ctx)
	return opts, nil
}

// Rel converts a path given on the command line or by an agent into an
// index path: relative to the root, with forward slashes. Relative input is
// taken as relative to the root already.
func (w *Workspace) Rel(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(w.Root, p); err == nil {
			p = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// Close releases the summary store.
func (w *Workspace) Close() error {
	if w.store != nil {
		return w.store.Close()
	}
	return nil
}
