package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/ctx/internal/callers"
	"github.com/hargabyte/ctx/internal/extract"
	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
	"github.com/hargabyte/ctx/internal/walker"
)

// Store persists facts between invocations.
type Store interface {
	Get(path string, modTime int64) (*parser.Facts, bool, error)
	Put(path string, modTime int64, facts *parser.Facts) error
	Prune(existing []string) (int, error)
}

// Options configures an Engine.
type Options struct {
	Walk walker.Options
	// Languages limits the parsers initialized. Empty means all.
	Languages []parser.Language
	// Workers bounds parallel parsing. Zero means GOMAXPROCS.
	Workers int
	// Cache is reused across builds when set.
	Cache *parser.Cache
	// Store is consulted after the in-memory cache, if set.
	Store  Store
	Logger *slog.Logger
}

// Engine builds indexes. Builds on one engine are serialized because they
// share parse trees through the cache.
type Engine struct {
	opts    Options
	manager *parser.Manager
	logger  *slog.Logger
	mu      sync.Mutex
}

// New initializes parsers for the configured languages. It fails with
// parser.ErrNoParsers when none can be initialized.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Cache == nil {
		opts.Cache = parser.NewCache()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Walk.Logger == nil {
		opts.Walk.Logger = logger
	}

	m, err := parser.NewManager(opts.Cache, opts.Languages, parser.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &Engine{opts: opts, manager: m, logger: logger}, nil
}

// Manager returns the engine's parser manager.
func (e *Engine) Manager() *parser.Manager { return e.manager }

// Build walks root and collects facts for every parseable file. Per-file
// failures are recorded in Index.Errors. Build fails only when the root
// cannot be resolved or ctx is cancelled.
func (e *Engine) Build(ctx context.Context, root string) (*Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	w, err := walker.New(root, e.opts.Walk)
	if err != nil {
		return nil, err
	}
	entries := w.Collect()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	idx := &Index{
		Root:      w.Root(),
		Files:     entries,
		Summaries: make(map[string]*model.FileSummary),
	}
	for _, d := range w.Diagnostics() {
		idx.Errors = append(idx.Errors, &FileError{Path: d.Path, Err: d.Err})
	}

	var (
		mu        sync.Mutex
		facts     = make([]*parser.Facts, len(entries))
		parsed    atomic.Int64
		cacheHits atomic.Int64
		storeHits atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, entry := range entries {
		if !e.manager.Supports(entry.Language) {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			f, src, err := e.factsFor(gctx, entry)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				idx.Errors = append(idx.Errors, &FileError{Path: entry.Path, Err: err})
				mu.Unlock()
				e.logger.Warn("skipping file", "path", entry.Path, "error", err)
				return nil
			}
			switch src {
			case fromCache:
				cacheHits.Add(1)
			case fromStore:
				storeHits.Add(1)
			default:
				parsed.Add(1)
			}
			facts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	calls := make(map[string][]model.CallSite)
	for i, f := range facts {
		if f == nil {
			continue
		}
		p := entries[i].Path
		idx.Summaries[p] = f.Summary
		calls[p] = f.Calls
	}
	idx.Callers = callers.Build(calls)

	if e.opts.Store != nil {
		if n, err := e.opts.Store.Prune(idx.Paths()); err != nil {
			e.logger.Warn("failed to prune summary store", "error", err)
		} else if n > 0 {
			e.logger.Debug("pruned summary store", "removed", n)
		}
	}

	sort.Slice(idx.Errors, func(i, j int) bool { return idx.Errors[i].Path < idx.Errors[j].Path })
	idx.Stats = Stats{
		Files:     len(entries),
		Parsed:    int(parsed.Load()),
		CacheHits: int(cacheHits.Load()),
		StoreHits: int(storeHits.Load()),
		Errors:    len(idx.Errors),
	}
	e.logger.Debug("index built",
		"root", idx.Root,
		"files", idx.Stats.Files,
		"parsed", idx.Stats.Parsed,
		"cache_hits", idx.Stats.CacheHits,
		"store_hits", idx.Stats.StoreHits,
		"errors", idx.Stats.Errors,
		"duration", time.Since(start))
	return idx, nil
}

type factSource int

const (
	fromParse factSource = iota
	fromCache
	fromStore
)

// factsFor resolves one file's facts from the cache, then the store, then
// a fresh parse. Facts are keyed by absolute path in the cache and by
// relative path in the store.
func (e *Engine) factsFor(ctx context.Context, entry walker.Entry) (*parser.Facts, factSource, error) {
	cache := e.manager.Cache()
	modTime, statErr := parser.ModTime(entry.AbsPath)
	if statErr == nil {
		if f, ok := cache.Facts(entry.AbsPath, modTime); ok {
			return f, fromCache, nil
		}
		if e.opts.Store != nil {
			f, ok, err := e.opts.Store.Get(entry.Path, modTime)
			if err != nil {
				e.logger.Warn("summary store read failed", "path", entry.Path, "error", err)
			} else if ok {
				cache.SetFacts(entry.AbsPath, modTime, f)
				return f, fromStore, nil
			}
		}
	}

	result, err := e.manager.Parse(ctx, entry.AbsPath)
	if err != nil {
		var readErr *parser.FileReadError
		if errors.As(err, &readErr) {
			return nil, fromParse, readErr.Err
		}
		return nil, fromParse, fmt.Errorf("parse failed: %w", err)
	}

	summary := extract.Summarize(result)
	summary.Path = entry.Path
	sites := callers.Extract(result)
	for i := range sites {
		sites[i].CallerFile = entry.Path
	}
	for i := range summary.Imports {
		summary.Imports[i].File = entry.Path
	}
	f := &parser.Facts{Summary: summary, Calls: sites}

	if statErr == nil {
		cache.SetFacts(entry.AbsPath, modTime, f)
		if e.opts.Store != nil {
			if err := e.opts.Store.Put(entry.Path, modTime, f); err != nil {
				e.logger.Warn("summary store write failed", "path", entry.Path, "error", err)
			}
		}
	}
	return f, fromParse, nil
}
