// Package token estimates token counts for prompts and completions.
//
// Serving benchmarks prune and normalize by token length, not byte length.
// Without shipping a model-specific tokenizer we approximate: subword
// vocabularies average out to roughly four characters per token for English
// text, and punctuation almost always splits into its own token.
package token

import (
	"unicode"
)

// Counter reports the token count of a text.
type Counter interface {
	Count(text string) int
}

// Heuristic approximates subword token counts without a vocabulary file.
// Runs of letters/digits contribute ceil(len/4) tokens; every other
// non-space rune counts as one token.
type Heuristic struct{}

// NewHeuristic returns the default counter.
func NewHeuristic() Heuristic { return Heuristic{} }

// Count implements Counter.
func (Heuristic) Count(text string) int {
	n := 0
	run := 0
	flush := func() {
		if run > 0 {
			n += (run + 3) / 4
			run = 0
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			run++
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			n++
		}
	}
	flush()
	return n
}
