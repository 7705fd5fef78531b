package derive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Token counts depend on whether the BPE encoder is available,
// so assertions here cover monotonicity, role attribution, and
// the utilization cap rather than absolute numbers.

func TestCountTokens_RoleAttribution(t *testing.T) {
	stats := CountTokens([]Message{
		{Role: "user", Content: "please refactor the session reader"},
		{Role: "assistant", Content: "done, extracted a lineReader type"},
		{Role: "system", Content: "system messages are not counted"},
	}, "claude-3-5-sonnet-20241022")

	assert.Positive(t, stats.InputTokens)
	assert.Positive(t, stats.OutputTokens)
	assert.Equal(t, stats.InputTokens+stats.OutputTokens, stats.TotalTokens)
}

func TestCountTokens_Empty(t *testing.T) {
	stats := CountTokens(nil, "")
	assert.Zero(t, stats.TotalTokens)
	assert.Zero(t, stats.ContextUtilization)
}

func TestCountTokens_Monotonic(t *testing.T) {
	small := CountTokens([]Message{
		{Role: "user", Content: strings.Repeat("refactor ", 10)},
	}, "")
	large := CountTokens([]Message{
		{Role: "user", Content: strings.Repeat("refactor ", 100)},
	}, "")
	assert.Greater(t, large.InputTokens, small.InputTokens)
}

func TestCountTokens_UtilizationCapped(t *testing.T) {
	stats := CountTokens([]Message{
		{Role: "user", Content: strings.Repeat("a b c d e f g h ", 600000)},
	}, "gpt-4")
	assert.Equal(t, 1.0, stats.ContextUtilization)
}

func TestCountTokens_UnknownModelUsesDefaultWindow(t *testing.T) {
	msgs := []Message{{Role: "user", Content: "a short prompt here"}}
	known := CountTokens(msgs, "claude-3-5-sonnet-20241022")
	unknown := CountTokens(msgs, "some-future-model")
	// Both windows are 200k, so utilization matches.
	assert.Equal(t, known.ContextUtilization, unknown.ContextUtilization)
	assert.LessOrEqual(t, unknown.ContextUtilization, 1.0)
	assert.Greater(t, unknown.ContextUtilization, 0.0)
}
