package derive

import "strings"

const (
	// Budgets for truncated highlight text.
	firstMessageBudget = 500
	exchangeBudget     = 300

	// A message shorter than this (trimmed) is noise.
	minMeaningfulLength = 10
)

// Message is the role/content view the derivations operate on.
type Message struct {
	Role    string
	Content string
}

// Exchange is a paired user message and assistant response.
type Exchange struct {
	UserMessage       string `json:"userMessage"`
	AssistantResponse string `json:"assistantResponse"`
}

// Highlights carries the first meaningful user intent and the
// last user/assistant exchange of a session.
type Highlights struct {
	FirstUserMessage string    `json:"firstUserMessage,omitempty"`
	LastExchange     *Exchange `json:"lastExchange,omitempty"`
}

// ExtractHighlights finds the first meaningful user message and
// the last meaningful user message paired with the first
// meaningful assistant response after it. skipPrefixes holds
// caller-supplied prefixes for tool-specific noise.
func ExtractHighlights(msgs []Message, skipPrefixes []string) Highlights {
	var h Highlights

	lastUser := -1
	for i, m := range msgs {
		if m.Role != "user" || !isMeaningful(m.Content, skipPrefixes) {
			continue
		}
		if h.FirstUserMessage == "" {
			h.FirstUserMessage = truncateAtWord(
				m.Content, firstMessageBudget,
			)
		}
		lastUser = i
	}
	if lastUser < 0 {
		return h
	}

	exchange := &Exchange{
		UserMessage: truncateAtWord(
			msgs[lastUser].Content, exchangeBudget,
		),
	}
	for _, m := range msgs[lastUser+1:] {
		if m.Role == "assistant" && isMeaningful(m.Content, skipPrefixes) {
			exchange.AssistantResponse = truncateAtWord(
				m.Content, exchangeBudget,
			)
			break
		}
	}
	h.LastExchange = exchange
	return h
}

// isMeaningful filters out short messages, tool markers, and
// caller-specified noise prefixes.
func isMeaningful(content string, skipPrefixes []string) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < minMeaningfulLength {
		return false
	}
	if strings.HasPrefix(trimmed, "[Tool:") ||
		strings.HasPrefix(trimmed, "[Tool result]") {
		return false
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return false
		}
	}
	return true
}

// truncateAtWord trims s to at most budget bytes, breaking at a
// word boundary when one falls within the final 20% of the
// budget, and appends "..." iff truncation occurred.
func truncateAtWord(s string, budget int) string {
	s = strings.TrimSpace(s)
	if len(s) <= budget {
		return s
	}
	cut := budget - 3
	if idx := strings.LastIndexByte(s[:cut], ' '); idx >= budget*4/5 {
		cut = idx
	}
	return strings.TrimRight(s[:cut], " ") + "..."
}
