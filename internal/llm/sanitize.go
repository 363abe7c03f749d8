package llm

import (
	"regexp"
	"strings"
)

// Small local models occasionally leak chat-template control tokens into
// their output. Stripping them here keeps both the user-visible answer and
// the stored history clean; a leaked token fed back on the next turn can
// derail the template entirely.
var (
	specialTokenPattern = regexp.MustCompile(`<\|im_(?:start|end)\|>|<\|endoftext\|>`)
	excessNewlines      = regexp.MustCompile(`\n{3,}`)
)

// CleanContent strips chat-template control tokens, collapses runs of three
// or more newlines to two, and trims surrounding whitespace.
func CleanContent(s string) string {
	s = specialTokenPattern.ReplaceAllString(s, "")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
