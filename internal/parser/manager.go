package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Manager parses files on demand, consulting its cache first.
// It is safe for concurrent use.
type Manager struct {
	cache  *Cache
	pools  map[Language]*sync.Pool
	logger *slog.Logger

	parses atomic.Int64
	hits   atomic.Int64
}

// ManagerStats counts engine invocations and cache hits.
type ManagerStats struct {
	Parses int64 `json:"parses" yaml:"parses"`
	Hits   int64 `json:"hits" yaml:"hits"`
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for initialization diagnostics.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager for the given languages backed by cache.
// With no languages, every supported language is enabled. Languages that
// fail to initialize are logged and skipped; ErrNoParsers is returned only
// when none succeed.
func NewManager(cache *Cache, langs []Language, opts ...ManagerOption) (*Manager, error) {
	if cache == nil {
		cache = NewCache()
	}
	if len(langs) == 0 {
		langs = Languages()
	}

	m := &Manager{
		cache:  cache,
		pools:  make(map[Language]*sync.Pool, len(langs)),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}

	var failed []string
	for _, lang := range langs {
		if _, ok := m.pools[lang]; ok {
			continue
		}
		// Build one parser up front so a broken grammar is caught here
		// rather than on first use.
		first, err := NewParser(lang)
		if err != nil {
			m.logger.Warn("parser unavailable", "language", string(lang), "error", err)
			failed = append(failed, string(lang))
			continue
		}
		l := lang
		pool := &sync.Pool{New: func() any {
			p, err := NewParser(l)
			if err != nil {
				return nil
			}
			return p
		}}
		pool.Put(first)
		m.pools[lang] = pool
	}

	if len(m.pools) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoParsers, strings.Join(failed, ", "))
	}
	return m, nil
}

// Cache returns the cache the manager reads and writes.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Supports reports whether the manager can parse lang.
func (m *Manager) Supports(lang Language) bool {
	_, ok := m.pools[lang]
	return ok
}

// Stats returns the engine invocation and cache hit counters.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{Parses: m.parses.Load(), Hits: m.hits.Load()}
}

// ModTime returns the modification time of path in nanoseconds.
func ModTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().UnixNano(), nil
}

// Parse returns the tree for path. A cached tree is returned when the
// file's modification time still matches; otherwise the file is read,
// parsed and stored under its current time.
//
// If the modification time cannot be read the file is parsed anyway and
// the result is not cached. The only failures are unreadable files
// (*FileReadError), languages without a parser (*UnsupportedLanguageError)
// and engine aborts (*ParseError).
func (m *Manager) Parse(ctx context.Context, path string) (*ParseResult, error) {
	lang := LanguageFromPath(path)
	if !m.Supports(lang) {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	modTime, statErr := ModTime(path)
	if statErr == nil {
		if result, ok := m.cache.Get(path, modTime); ok {
			m.hits.Add(1)
			return result, nil
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	result, err := m.ParseSource(ctx, lang, source)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	result.FilePath = path

	if statErr == nil {
		m.cache.Put(path, modTime, result)
	}
	return result, nil
}

// ParseSource parses in-memory source without touching the cache.
func (m *Manager) ParseSource(ctx context.Context, lang Language, source []byte) (*ParseResult, error) {
	pool, ok := m.pools[lang]
	if !ok {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	p, _ := pool.Get().(*Parser)
	if p == nil {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}
	defer pool.Put(p)

	m.parses.Add(1)
	return p.Parse(ctx, source)
}
