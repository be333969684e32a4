// Package budget assembles ranked lines into text bounded by an estimated
// token budget.
package budget

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Estimator maps a line of text to its estimated token cost.
type Estimator interface {
	Estimate(text string) int
}

// EstimatorFunc adapts a function to Estimator.
type EstimatorFunc func(text string) int

// Estimate calls f(text).
func (f EstimatorFunc) Estimate(text string) int { return f(text) }

// CharRatio estimates one token per Chars characters, rounding up.
type CharRatio struct {
	Chars int
}

// Estimate returns ceil(runes / Chars).
func (c CharRatio) Estimate(text string) int {
	chars := c.Chars
	if chars <= 0 {
		chars = 4
	}
	n := utf8.RuneCountInString(text)
	return (n + chars - 1) / chars
}

// Hybrid averages a character estimate with a word and punctuation
// estimate. It tracks code, where operators often tokenize alone, more
// closely than CharRatio.
type Hybrid struct{}

// Estimate returns the averaged estimate for text.
func (Hybrid) Estimate(text string) int {
	if text == "" {
		return 0
	}

	words := len(strings.Fields(text))
	var punct, nonSpace int
	for _, r := range text {
		if !unicode.IsSpace(r) {
			nonSpace++
		}
		if strings.ContainsRune("(){}[];,.:<>=+-*/&|!@#$%^", r) {
			punct++
		}
	}

	charEstimate := (nonSpace + 3) / 4
	wordEstimate := int(float64(words)*1.3) + punct/2
	return (charEstimate + wordEstimate) / 2
}

// Estimator names accepted by ParseEstimator.
const (
	EstimatorChars  = "chars"
	EstimatorHybrid = "hybrid"
)

// DefaultEstimator is used when no estimator is configured.
var DefaultEstimator Estimator = CharRatio{Chars: 4}

// ParseEstimator returns the estimator registered under name. The empty
// name selects DefaultEstimator.
func ParseEstimator(name string) (Estimator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EstimatorChars:
		return DefaultEstimator, nil
	case EstimatorHybrid:
		return Hybrid{}, nil
	default:
		return nil, fmt.Errorf("unknown estimator %q (valid: %s, %s)", name, EstimatorChars, EstimatorHybrid)
	}
}
