package activity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNotGitRepo is returned when git cannot find a repository at the
// given root, or git itself is unavailable.
var ErrNotGitRepo = errors.New("not a git repository")

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// Git runs git in dir and returns stdout.
func Git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		var execErr *exec.Error
		if errors.As(err, &execErr) || strings.Contains(strings.ToLower(msg), "not a git repository") {
			return nil, fmt.Errorf("%w: %s", ErrNotGitRepo, dir)
		}
		if msg != "" {
			return nil, fmt.Errorf("git %s failed: %s: %w", args[0], msg, err)
		}
		return nil, fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return out, nil
}

// GitLog reads the newest n commits reachable from HEAD with the files each
// one touched. A repository without commits yields no commits.
func GitLog(ctx context.Context, root string, n int) ([]Commit, error) {
	args := []string{
		"log", "--name-only", "--no-merges", "--no-renames",
		"--format=" + recordSep + "%H" + fieldSep + "%an" + fieldSep + "%at" + fieldSep + "%s",
	}
	if n > 0 {
		args = append(args, "-n", strconv.Itoa(n))
	}
	out, err := Git(ctx, root, args...)
	if err != nil {
		if errors.Is(err, ErrNotGitRepo) {
			return nil, err
		}
		if _, headErr := Git(ctx, root, "rev-parse", "--verify", "HEAD"); headErr != nil {
			return nil, nil
		}
		return nil, err
	}
	return ParseLog(string(out)), nil
}

// ParseLog parses the output of GitLog's git log format.
func ParseLog(out string) []Commit {
	var commits []Commit
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		lines := strings.Split(rec, "\n")
		fields := strings.SplitN(lines[0], fieldSep, 4)
		if len(fields) < 4 {
			continue
		}
		c := Commit{Hash: fields[0], Author: fields[1], Subject: fields[3]}
		if secs, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			c.Time = time.Unix(secs, 0).UTC()
		}
		for _, l := range lines[1:] {
			if l = strings.TrimSpace(l); l != "" {
				c.Files = append(c.Files, l)
			}
		}
		commits = append(commits, c)
	}
	return commits
}

// Status is the working tree state.
type Status struct {
	Branch string `json:"branch" yaml:"branch"`
	// Dirty is set when tracked files have staged or unstaged changes.
	Dirty     bool `json:"dirty" yaml:"dirty"`
	Staged    int  `json:"staged" yaml:"staged"`
	Modified  int  `json:"modified" yaml:"modified"`
	Untracked int  `json:"untracked" yaml:"untracked"`
}

// GitStatus reports the current branch and counts changed files.
func GitStatus(ctx context.Context, root string) (*Status, error) {
	out, err := Git(ctx, root, "status", "--porcelain", "--branch", "--untracked-files=normal")
	if err != nil {
		return nil, err
	}
	return parseStatus(string(out)), nil
}

func parseStatus(out string) *Status {
	st := &Status{Branch: "HEAD"}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "## "):
			head := strings.TrimPrefix(line, "## ")
			head = strings.TrimPrefix(head, "No commits yet on ")
			if i := strings.Index(head, "..."); i >= 0 {
				head = head[:i]
			}
			if i := strings.IndexByte(head, ' '); i >= 0 {
				head = head[:i]
			}
			if head != "" {
				st.Branch = head
			}
		case strings.HasPrefix(line, "??"):
			st.Untracked++
		case len(line) >= 2:
			if line[0] != ' ' {
				st.Staged++
			}
			if line[1] != ' ' {
				st.Modified++
			}
		}
	}
	st.Dirty = st.Staged > 0 || st.Modified > 0
	return st
}

// DiffStat sums the inserted and deleted lines of the working tree and
// index against HEAD. Binary files are not counted, and a repository
// without commits reports zero.
func DiffStat(ctx context.Context, root string) (insertions, deletions int, err error) {
	out, err := Git(ctx, root, "diff", "--numstat", "HEAD")
	if err != nil {
		if errors.Is(err, ErrNotGitRepo) {
			return 0, 0, err
		}
		if _, headErr := Git(ctx, root, "rev-parse", "--verify", "HEAD"); headErr != nil {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	ins, del := parseNumstat(string(out))
	return ins, del, nil
}

func parseNumstat(out string) (insertions, deletions int) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		a, errA := strconv.Atoi(fields[0])
		d, errD := strconv.Atoi(fields[1])
		if errA != nil || errD != nil {
			continue
		}
		insertions += a
		deletions += d
	}
	return insertions, deletions
}
