// Package search finds literal text in the files a walk yields.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/ctx/internal/walker"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// DefaultContext is the number of lines shown on each side of a match.
const DefaultContext = 2

// binarySniff is how much of a file is checked for NUL bytes.
const binarySniff = 8000

// Options configures Text.
type Options struct {
	// Context is the number of lines kept before and after each match.
	Context int
	// Limit caps the number of matches. Zero means no limit.
	Limit int
	// Workers bounds parallel reads. Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Match is one matching line.
type Match struct {
	Path string `json:"path" yaml:"path"`
	Line int    `json:"line" yaml:"line"`
	// Column is the 1-based byte offset of the match in the line.
	Column int    `json:"column" yaml:"column"`
	Text   string `json:"text" yaml:"text"`
	// Context holds the surrounding lines as "N: text", without the match.
	Context []string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Text searches files for query, ignoring case. Binary and unreadable
// files are skipped. Matches come back in the order of files, then line.
func Text(ctx context.Context, files []walker.Entry, query string, opts Options) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if opts.Context < 0 {
		opts.Context = 0
	}
	needle := strings.ToLower(query)

	results := make([][]Match, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, entry := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			data, err := os.ReadFile(entry.AbsPath)
			if err != nil {
				logger.Debug("search skipped file", "path", entry.Path, "error", err)
				return nil
			}
			results[i] = searchFile(entry.Path, data, needle, opts.Context)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Match
	for _, ms := range results {
		for _, m := range ms {
			if opts.Limit > 0 && len(out) >= opts.Limit {
				return out, nil
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func searchFile(path string, data []byte, needle string, around int) []Match {
	if isBinary(data) {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	var out []Match
	for i, line := range lines {
		col := strings.Index(strings.ToLower(line), needle)
		if col < 0 {
			continue
		}
		m := Match{Path: path, Line: i + 1, Column: col + 1, Text: line}
		for j := max(0, i-around); j <= min(len(lines)-1, i+around); j++ {
			if j != i {
				m.Context = append(m.Context, fmt.Sprintf("%d: %s", j+1, lines[j]))
			}
		}
		out = append(out, m)
	}
	return out
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), binarySniff)], 0) >= 0
}
