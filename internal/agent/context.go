package agent

import (
	"regexp"
	"strings"

	"github.com/skiff-ai/skiff/internal/llm"
)

const (
	// charsPerToken is the rough chat-text ratio used for the context
	// estimate. It is deliberately coarse; the number feeds a progress
	// indicator, not an enforcement limit.
	charsPerToken = 4

	// maxRequestMessages caps how many messages a model request carries.
	// Older history beyond the cap is dropped request-side only; the
	// session store keeps everything.
	maxRequestMessages = 10

	// maxRequestToolChars truncates bulky tool results before they are
	// resent to the model in later rounds.
	maxRequestToolChars = 500

	// maxToolResultChars caps a tool result the first time it enters the
	// conversation.
	maxToolResultChars = 8000

	// emptyToolResult stands in for a tool that returned nothing.
	emptyToolResult = "No result returned from tool."
)

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

// estimateTokens approximates the token footprint of a message list.
func estimateTokens(messages []llm.Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
		for _, tc := range m.ToolCalls {
			chars += len(tc.Function.Name) + len(tc.Function.Arguments)
		}
	}
	return chars / charsPerToken
}

// trimForRequest shapes the working message list into what is actually sent
// to the model. Short conversations pass through untouched; once the list
// exceeds the cap, only the system prompt and the most recent messages
// survive, with tool results shortened to a summary-sized excerpt.
func trimForRequest(messages []llm.Message) []llm.Message {
	if len(messages) <= maxRequestMessages {
		return messages
	}

	trimmed := make([]llm.Message, 0, maxRequestMessages)
	trimmed = append(trimmed, messages[0]) // system prompt
	trimmed = append(trimmed, messages[len(messages)-(maxRequestMessages-1):]...)

	for i, m := range trimmed {
		if m.Role == llm.RoleTool && len(m.Content) > maxRequestToolChars {
			m.Content = m.Content[:maxRequestToolChars] + "\n... (truncated)"
			trimmed[i] = m
		}
	}
	return trimmed
}

// sanitizeToolResult cleans a tool's output before it joins the
// conversation: model control tokens are stripped, runs of blank lines are
// collapsed, and oversized results are cut down. A result with nothing
// left after cleaning becomes placeholder text so the model never sees an
// empty tool message.
func sanitizeToolResult(result string) string {
	cleaned := llm.CleanContent(result)
	cleaned = collapseNewlines.ReplaceAllString(cleaned, "\n\n")
	if len(cleaned) > maxToolResultChars {
		cleaned = cleaned[:maxToolResultChars] + "\n... (result truncated)"
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return emptyToolResult
	}
	return cleaned
}
