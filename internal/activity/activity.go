// Package activity turns commit history into per-file activity facts:
// how often a file was touched recently and which files change with it.
package activity

import (
	"fmt"
	"path"
	"sort"
	"time"
)

// Commit is one materialized commit record.
type Commit struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Author  string    `json:"author" yaml:"author"`
	Time    time.Time `json:"time" yaml:"time"`
	Subject string    `json:"subject" yaml:"subject"`
	Files   []string  `json:"files" yaml:"files"`
}

// Pair is a co-change partner and the number of commits shared with it.
type Pair struct {
	Path  string `json:"path" yaml:"path"`
	Count int    `json:"count" yaml:"count"`
}

// FileActivity summarises one file's recent history.
type FileActivity struct {
	Path         string    `json:"path" yaml:"path"`
	Commits      int       `json:"commits" yaml:"commits"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	LastAuthor   string    `json:"last_author,omitempty" yaml:"last_author,omitempty"`
}

// Facts are precomputed activity counts. A nil *Facts reports no activity.
type Facts struct {
	window   int
	commits  map[string]int
	last     map[string]FileActivity
	cochange map[string]map[string]int
}

// FromCommits computes facts from commits ordered newest first. Touch
// counts cover the newest window commits (all of them when window <= 0);
// co-change pairs cover every commit given.
func FromCommits(commits []Commit, window int) *Facts {
	f := &Facts{
		window:   window,
		commits:  make(map[string]int),
		last:     make(map[string]FileActivity),
		cochange: make(map[string]map[string]int),
	}

	for i, c := range commits {
		files := dedupe(c.Files)
		if window <= 0 || i < window {
			for _, p := range files {
				f.commits[p]++
				a := f.last[p]
				a.Path = p
				a.Commits = f.commits[p]
				if a.LastModified.IsZero() || c.Time.After(a.LastModified) {
					a.LastModified = c.Time
					a.LastAuthor = c.Author
				}
				f.last[p] = a
			}
		}
		for _, a := range files {
			for _, b := range files {
				if a == b {
					continue
				}
				m := f.cochange[a]
				if m == nil {
					m = make(map[string]int)
					f.cochange[a] = m
				}
				m[b]++
			}
		}
	}
	return f
}

// Window returns the number of commits counted for touches.
func (f *Facts) Window() int {
	if f == nil {
		return 0
	}
	return f.window
}

// Commits returns how many commits in the window touched path.
func (f *Facts) Commits(path string) int {
	if f == nil {
		return 0
	}
	return f.commits[path]
}

// CoChanged returns the files changed together with path, most frequent
// first, ties by path.
func (f *Facts) CoChanged(path string) []Pair {
	if f == nil {
		return nil
	}
	partners := f.cochange[path]
	pairs := make([]Pair, 0, len(partners))
	for p, n := range partners {
		pairs = append(pairs, Pair{Path: p, Count: n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Path < pairs[j].Path
	})
	return pairs
}

// Recent returns up to n of the most touched files in the window, ties
// broken by most recent change and then path. n <= 0 returns all.
func (f *Facts) Recent(n int) []FileActivity {
	if f == nil {
		return nil
	}
	out := make([]FileActivity, 0, len(f.last))
	for _, a := range f.last {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].Path < out[j].Path
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DirActivity counts the commits that touched files in one directory.
type DirActivity struct {
	Path    string `json:"path" yaml:"path"`
	Commits int    `json:"commits" yaml:"commits"`
}

// HotDirectories ranks the parent directories of files changed by commits
// made at or after since. A commit counts once per directory. Files at the
// repository root belong to ".". Ties break by path; n <= 0 returns all.
func HotDirectories(commits []Commit, since time.Time, n int) []DirActivity {
	counts := make(map[string]int)
	for _, c := range commits {
		if c.Time.Before(since) {
			continue
		}
		seen := make(map[string]bool)
		for _, p := range c.Files {
			if p == "" {
				continue
			}
			dir := path.Dir(p)
			if !seen[dir] {
				seen[dir] = true
				counts[dir]++
			}
		}
	}
	out := make([]DirActivity, 0, len(counts))
	for dir, count := range counts {
		out = append(out, DirActivity{Path: dir, Commits: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Path < out[j].Path
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TimeAgo renders an elapsed duration as "30s ago", "5m ago", "3h ago",
// "2d ago" or "4w ago".
func TimeAgo(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh ago", secs/3600)
	case secs < 604800:
		return fmt.Sprintf("%dd ago", secs/86400)
	default:
		return fmt.Sprintf("%dw ago", secs/604800)
	}
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0:0]
	for _, p := range files {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
