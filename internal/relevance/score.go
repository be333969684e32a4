package relevance

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

// Factor contributions.
const (
	PathMentionBonus     = 10.0
	BasenameMentionBonus = 5.0
	KeywordBonus         = 1.0
	CommitBonus          = 0.5
	MaxRecencyBonus      = 2.5
	AffinityBonus        = 2.0
)

// Activity supplies per-file commit counts within the activity window.
type Activity interface {
	Commits(path string) int
}

// Candidate is a file considered for inclusion in the context. Files in an
// unsupported language carry parser.None and still score on every factor
// except affinity.
type Candidate struct {
	Path     string
	Language parser.Language
}

// Options controls Score output.
type Options struct {
	// DropZero removes candidates that scored exactly zero.
	DropZero bool
	// Limit caps the number of results; zero means no cap.
	Limit int
}

// Prompt is the analysed form of a prompt shared by every factor.
type Prompt struct {
	lower     string
	Keywords  []string
	Mentioned []string
	Languages []parser.Language
}

// AnalyzePrompt tokenizes prompt once for scoring.
func AnalyzePrompt(prompt string) *Prompt {
	return &Prompt{
		lower:     strings.ToLower(prompt),
		Keywords:  ExtractKeywords(prompt),
		Mentioned: ExtractMentionedFiles(prompt),
		Languages: ImpliedLanguages(prompt),
	}
}

// A factor computes one independent contribution and its reason. A zero
// contribution has no reason.
type factor func(p *Prompt, c Candidate, act Activity) (float64, string)

var factors = []factor{
	pathMention,
	basenameMention,
	keywordMatch,
	recency,
	affinity,
}

func pathMention(p *Prompt, c Candidate, _ Activity) (float64, string) {
	rel := strings.ToLower(c.Path)
	if rel == "" || !strings.Contains(p.lower, rel) {
		return 0, ""
	}
	return PathMentionBonus, "path mentioned"
}

func basenameMention(p *Prompt, c Candidate, _ Activity) (float64, string) {
	base := strings.ToLower(path.Base(c.Path))
	if base == "" || base == "." || base == "/" || !strings.Contains(p.lower, base) {
		return 0, ""
	}
	return BasenameMentionBonus, "filename mentioned"
}

func keywordMatch(p *Prompt, c Candidate, _ Activity) (float64, string) {
	rel := strings.ToLower(c.Path)
	var matched []string
	for _, kw := range p.Keywords {
		if strings.Contains(rel, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return 0, ""
	}
	return KeywordBonus * float64(len(matched)), "keywords: " + strings.Join(matched, ", ")
}

func recency(_ *Prompt, c Candidate, act Activity) (float64, string) {
	if act == nil {
		return 0, ""
	}
	n := act.Commits(c.Path)
	if n <= 0 {
		return 0, ""
	}
	bonus := min(CommitBonus*float64(n), MaxRecencyBonus)
	if n == 1 {
		return bonus, "1 recent commit"
	}
	return bonus, fmt.Sprintf("%d recent commits", n)
}

func affinity(p *Prompt, c Candidate, _ Activity) (float64, string) {
	if c.Language == parser.None {
		return 0, ""
	}
	family := c.Language.Family()
	for _, lang := range p.Languages {
		if lang == family {
			return AffinityBonus, "language: " + string(family)
		}
	}
	return 0, ""
}

// ScoreOne scores a single candidate against an analysed prompt.
func ScoreOne(p *Prompt, c Candidate, act Activity) model.RelevanceScore {
	rs := model.RelevanceScore{
		Path:     c.Path,
		Language: string(c.Language),
		Reasons:  []string{},
	}
	for _, f := range factors {
		v, reason := f(p, c, act)
		if v == 0 {
			continue
		}
		rs.Score += v
		rs.Reasons = append(rs.Reasons, reason)
	}
	return rs
}

// Score ranks candidates by relevance to prompt. Each candidate is scored
// on its own, so the order of candidates never changes a score. Results are
// sorted by descending score, then shorter path, then path.
func Score(prompt string, candidates []Candidate, act Activity, opts Options) []model.RelevanceScore {
	p := AnalyzePrompt(prompt)

	scores := make([]model.RelevanceScore, 0, len(candidates))
	for _, c := range candidates {
		rs := ScoreOne(p, c, act)
		if opts.DropZero && rs.Score == 0 {
			continue
		}
		scores = append(scores, rs)
	}

	Sort(scores)
	if opts.Limit > 0 && len(scores) > opts.Limit {
		scores = scores[:opts.Limit]
	}
	return scores
}

// Sort orders scores by descending score, then shorter path, then path.
func Sort(scores []model.RelevanceScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Path) != len(b.Path) {
			return len(a.Path) < len(b.Path)
		}
		return a.Path < b.Path
	})
}
