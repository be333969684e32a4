package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/activity"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the repository's git state and recent activity",
	Long: `Show the project name and type, the current branch, counts of staged,
modified and untracked files, inserted and deleted lines against HEAD,
the latest commits and the directories changed most in the last week.

Requires a git repository (exit code 3 otherwise).`,
	Example: `  ctx status
  ctx status --format text --commits 10`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runStatus,
}

var (
	statusCommits int
	statusHotDirs int
)

// hotWindow is how far back hot directories look.
const hotWindow = 7 * 24 * time.Hour

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusCommits, "commits", 5, "Recent commits to show")
	statusCmd.Flags().IntVar(&statusHotDirs, "hot-dirs", 5, "Hot directories to show")
}

type statusReport struct {
	Project        string                 `json:"project" yaml:"project"`
	Type           string                 `json:"type,omitempty" yaml:"type,omitempty"`
	Branch         string                 `json:"branch" yaml:"branch"`
	Dirty          bool                   `json:"dirty" yaml:"dirty"`
	Staged         int                    `json:"staged" yaml:"staged"`
	Modified       int                    `json:"modified" yaml:"modified"`
	Untracked      int                    `json:"untracked" yaml:"untracked"`
	Insertions     int                    `json:"insertions" yaml:"insertions"`
	Deletions      int                    `json:"deletions" yaml:"deletions"`
	RecentCommits  []recentCommit         `json:"recent_commits" yaml:"recent_commits"`
	HotDirectories []activity.DirActivity `json:"hot_directories" yaml:"hot_directories"`
}

type recentCommit struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Subject string    `json:"subject" yaml:"subject"`
	Author  string    `json:"author" yaml:"author"`
	Time    time.Time `json:"time" yaml:"time"`
	Ago     string    `json:"ago" yaml:"ago"`
}

func (r statusReport) Text() string {
	var sb strings.Builder
	kind := r.Type
	if kind == "" {
		kind = "unknown"
	}
	fmt.Fprintf(&sb, "%s (%s)\n", r.Project, kind)
	dirty := ""
	if r.Dirty {
		dirty = "*"
	}
	fmt.Fprintf(&sb, "Branch: %s%s\n", r.Branch, dirty)
	if r.Staged+r.Modified+r.Untracked > 0 {
		fmt.Fprintf(&sb, "Changes: %d staged, %d modified, %d untracked\n", r.Staged, r.Modified, r.Untracked)
	}
	if r.Insertions+r.Deletions > 0 {
		fmt.Fprintf(&sb, "Diff: +%d -%d\n", r.Insertions, r.Deletions)
	}
	if len(r.RecentCommits) > 0 {
		sb.WriteString("\nRecent commits:\n")
		for _, c := range r.RecentCommits {
			fmt.Fprintf(&sb, "  %s %s (%s)\n", c.Hash, c.Subject, c.Ago)
		}
	}
	if len(r.HotDirectories) > 0 {
		sb.WriteString("\nHot directories (this week):\n")
		for _, d := range r.HotDirectories {
			unit := "commits"
			if d.Commits == 1 {
				unit = "commit"
			}
			fmt.Fprintf(&sb, "  %s (%d %s)\n", d.Path, d.Commits, unit)
		}
	}
	return sb.String()
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	st, err := activity.GitStatus(ctx, s.ws.Root)
	if err != nil {
		return err
	}
	ins, del, err := activity.DiffStat(ctx, s.ws.Root)
	if err != nil {
		return err
	}
	commits, err := activity.GitLog(ctx, s.ws.Root, s.ws.Config.Activity.CochangeCommits)
	if err != nil {
		return err
	}

	now := time.Now()
	report := statusReport{
		Project:        s.ws.Project.Name,
		Type:           s.ws.Project.Type,
		Branch:         st.Branch,
		Dirty:          st.Dirty,
		Staged:         st.Staged,
		Modified:       st.Modified,
		Untracked:      st.Untracked,
		Insertions:     ins,
		Deletions:      del,
		RecentCommits:  []recentCommit{},
		HotDirectories: activity.HotDirectories(commits, now.Add(-hotWindow), statusHotDirs),
	}
	for i, c := range commits {
		if statusCommits >= 0 && i >= statusCommits {
			break
		}
		hash := c.Hash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		report.RecentCommits = append(report.RecentCommits, recentCommit{
			Hash:    hash,
			Subject: c.Subject,
			Author:  c.Author,
			Time:    c.Time,
			Ago:     activity.TimeAgo(now.Sub(c.Time)),
		})
	}
	s.logger.Debug("status", "branch", st.Branch, "commits", len(commits))
	return s.write(cmd, report)
}
