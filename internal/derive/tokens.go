package derive

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const defaultContextWindow = 200000

// contextWindows maps known model identifiers to their context
// window size in tokens.
var contextWindows = map[string]int{
	"claude-3-opus-20240229":     200000,
	"claude-3-sonnet-20240229":   200000,
	"claude-3-haiku-20240307":    200000,
	"claude-3-5-sonnet-20240620": 200000,
	"claude-3-5-sonnet-20241022": 200000,
	"claude-3-5-haiku-20241022":  200000,
	"claude-3-7-sonnet-20250219": 200000,
	"claude-sonnet-4-20250514":   200000,
	"claude-opus-4-20250514":     200000,
	"gpt-4o":                     128000,
	"gpt-4o-mini":                128000,
	"gpt-4-turbo":                128000,
	"gpt-4":                      8192,
	"gpt-3.5-turbo":              16385,
}

// TokenStats summarizes token usage for a session.
type TokenStats struct {
	InputTokens        int     `json:"inputTokens"`
	OutputTokens       int     `json:"outputTokens"`
	TotalTokens        int     `json:"totalTokens"`
	ContextUtilization float64 `json:"contextUtilization"`
}

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// getEncoder lazily initializes the cl100k_base encoder. A nil
// return means encoding is unavailable and callers fall back to
// the character estimate.
func getEncoder() *tiktoken.Tiktoken {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})
	return encoder
}

// countText returns the token count for a text, using the BPE
// encoder when available and ceil(len/4) otherwise.
func countText(text string) int {
	if text == "" {
		return 0
	}
	if enc := getEncoder(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// CountTokens sums user-message tokens as input and assistant
// tokens as output, and computes context utilization against
// the model's window (capped at 1).
func CountTokens(msgs []Message, model string) TokenStats {
	var stats TokenStats
	for _, m := range msgs {
		n := countText(m.Content)
		switch m.Role {
		case "user":
			stats.InputTokens += n
		case "assistant":
			stats.OutputTokens += n
		}
	}
	stats.TotalTokens = stats.InputTokens + stats.OutputTokens

	window := contextWindows[model]
	if window == 0 {
		window = defaultContextWindow
	}
	stats.ContextUtilization = float64(stats.TotalTokens) / float64(window)
	if stats.ContextUtilization > 1 {
		stats.ContextUtilization = 1
	}
	return stats
}
