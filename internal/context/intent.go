package context

import (
	"regexp"
	"strings"
)

// Intent is what the prompt asks for, beyond its keywords.
type Intent struct {
	// Pattern is the detected task pattern (e.g., "add_feature", "fix_bug", "refactor")
	Pattern string `yaml:"pattern" json:"pattern"`

	// ActionVerb is the primary action verb (add, fix, update, etc.)
	ActionVerb string `yaml:"action_verb,omitempty" json:"action_verb,omitempty"`

	// EntityMentions are identifier-shaped words that may name a symbol
	EntityMentions []string `yaml:"entity_mentions,omitempty" json:"entity_mentions,omitempty"`
}

// actionPatterns maps action verbs to task patterns.
var actionPatterns = map[string]string{
	"add":         "add_feature",
	"implement":   "add_feature",
	"create":      "add_feature",
	"build":       "add_feature",
	"fix":         "fix_bug",
	"repair":      "fix_bug",
	"debug":       "fix_bug",
	"resolve":     "fix_bug",
	"update":      "modify",
	"change":      "modify",
	"modify":      "modify",
	"edit":        "modify",
	"refactor":    "refactor",
	"restructure": "refactor",
	"reorganize":  "refactor",
	"clean":       "refactor",
	"optimize":    "optimize",
	"improve":     "optimize",
	"speed":       "optimize",
	"performance": "optimize",
	"remove":      "remove",
	"delete":      "remove",
	"deprecate":   "remove",
	"test":        "test",
	"verify":      "test",
	"document":    "document",
	"explain":     "explore",
	"understand":  "explore",
	"find":        "explore",
}

var (
	camelCase = regexp.MustCompile(`[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]*)+`)
	snakeCase = regexp.MustCompile(`[a-z][a-z0-9]*(?:_[a-z0-9]+)+`)
	codeLike  = regexp.MustCompile(`[a-z][a-z0-9]*[A-Z][a-zA-Z0-9]*`)
)

// ExtractIntent parses a prompt and extracts the intent.
func ExtractIntent(prompt string) *Intent {
	intent := &Intent{}
	intent.ActionVerb, intent.Pattern = detectActionPattern(strings.ToLower(strings.TrimSpace(prompt)))
	intent.EntityMentions = extractEntityMentions(prompt)
	return intent
}

// detectActionPattern identifies the first action verb and its pattern.
func detectActionPattern(desc string) (verb string, pattern string) {
	for _, word := range strings.Fields(desc) {
		word = strings.Trim(word, ".,;:!?\"'`")
		if pattern, ok := actionPatterns[word]; ok {
			return word, pattern
		}
	}
	// Default to modification pattern if no verb detected
	return "", "modify"
}

// extractEntityMentions finds CamelCase, snake_case and camelCase words.
// Words inside file paths are skipped; those are mentioned files.
func extractEntityMentions(desc string) []string {
	var mentions []string
	seen := make(map[string]bool)

	for _, field := range strings.Fields(desc) {
		word := strings.Trim(field, ".,;:!?\"'`()[]{}<>")
		if strings.ContainsAny(word, "/.") {
			continue
		}
		for _, pattern := range []*regexp.Regexp{camelCase, snakeCase, codeLike} {
			if m := pattern.FindString(word); m != "" && m == word && !seen[m] {
				seen[m] = true
				mentions = append(mentions, m)
			}
		}
	}
	return mentions
}
