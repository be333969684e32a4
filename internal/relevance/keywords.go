// Package relevance ranks candidate files against a free-text prompt and
// repository activity.
package relevance

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MinKeywordLength is the shortest word kept as a keyword.
const MinKeywordLength = 3

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "can": true, "to": true, "of": true,
	"in": true, "for": true, "on": true, "with": true, "at": true, "by": true,
	"from": true, "as": true, "into": true, "through": true, "during": true,
	"before": true, "after": true, "above": true, "below": true,
	"between": true, "under": true, "again": true, "further": true,
	"then": true, "once": true, "here": true, "there": true, "when": true,
	"where": true, "why": true, "how": true, "all": true, "each": true,
	"few": true, "more": true, "most": true, "other": true, "some": true,
	"such": true, "no": true, "nor": true, "not": true, "only": true,
	"own": true, "same": true, "so": true, "than": true, "too": true,
	"very": true, "just": true, "and": true, "but": true, "if": true,
	"or": true, "because": true, "until": true, "while": true, "this": true,
	"that": true, "these": true, "those": true, "what": true, "which": true,
	"who": true, "whom": true, "it": true, "its": true, "i": true, "me": true,
	"my": true, "we": true, "our": true, "you": true, "your": true,
	"he": true, "him": true, "his": true, "she": true, "her": true,
	"they": true, "them": true, "their": true,
}

// IsStopWord reports whether w is ignored during keyword extraction.
func IsStopWord(w string) bool {
	return stopWords[strings.ToLower(w)]
}

// tokens splits text into lowercase words of letters, digits and
// underscores.
func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// ExtractKeywords returns the distinct lowercase words of prompt that are
// at least MinKeywordLength runes long and not stop words, in order of
// first appearance.
func ExtractKeywords(prompt string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range tokens(prompt) {
		if len([]rune(w)) < MinKeywordLength || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

var knownExtensions = map[string]bool{
	".rs": true, ".py": true, ".js": true, ".ts": true, ".jsx": true,
	".tsx": true, ".go": true, ".c": true, ".cpp": true, ".h": true,
	".java": true, ".rb": true, ".php": true, ".toml": true, ".yaml": true,
	".yml": true, ".json": true, ".md": true, ".mjs": true, ".cjs": true,
	".pyi": true,
}

// ExtractMentionedFiles returns the prompt words that look like file
// paths with a known extension, in order of appearance.
func ExtractMentionedFiles(prompt string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, word := range strings.Fields(prompt) {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
				r != '/' && r != '.' && r != '_' && r != '-'
		})
		cleaned = strings.TrimRight(cleaned, ".")
		if !strings.ContainsAny(cleaned, "/.") {
			continue
		}
		if !knownExtensions[strings.ToLower(filepath.Ext(cleaned))] || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		files = append(files, cleaned)
	}
	return files
}
