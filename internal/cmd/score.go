package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/relevance"
)

var errEmptyPrompt = errors.New("prompt is empty")

var scoreCmd = &cobra.Command{
	Use:   "score <prompt>",
	Short: "Rank files by relevance to a prompt",
	Long: `Score every walked file against a prompt and list them best first.

Each file scores on its own from these factors:
  path mentioned in the prompt        +10
  basename mentioned in the prompt    +5
  keyword in the path                 +1 per keyword
  commits in the activity window      +0.5 per commit, at most +2.5
  language named in the prompt        +2

Files scoring zero are left out unless --all is given.`,
	Example: `  ctx score "fix the parser bug"
  ctx score --limit 5 --format json "update the rust lexer"`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runScore,
}

var (
	scoreLimit int
	scoreAll   bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 20, "Maximum files (0 for no limit)")
	scoreCmd.Flags().BoolVar(&scoreAll, "all", false, "Include files that scored zero")
}

// scoreResult is the output of ctx score.
type scoreResult struct {
	Prompt   string                 `yaml:"prompt" json:"prompt"`
	Keywords []string               `yaml:"keywords" json:"keywords"`
	Files    []model.RelevanceScore `yaml:"files" json:"files"`
}

func (r *scoreResult) Text() string {
	var sb strings.Builder
	for _, f := range r.Files {
		fmt.Fprintf(&sb, "%6.2f %s (%s)\n", f.Score, f.Path, strings.Join(f.Reasons, ", "))
	}
	return sb.String()
}

func runScore(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return usageError(errEmptyPrompt)
	}
	if scoreLimit < 0 {
		return usageError(fmt.Errorf("--limit must not be negative"))
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return err
	}

	var act relevance.Activity
	if facts := s.ws.Activity(ctx); facts != nil {
		act = facts
	}
	keywords := relevance.ExtractKeywords(prompt)
	if keywords == nil {
		keywords = []string{}
	}
	return s.write(cmd, &scoreResult{
		Prompt:   prompt,
		Keywords: keywords,
		Files: relevance.Score(prompt, idx.Candidates(), act, relevance.Options{
			DropZero: !scoreAll,
			Limit:    scoreLimit,
		}),
	})
}
