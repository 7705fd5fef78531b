package transform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devark-ai/devark/internal/parser"
	"github.com/devark-ai/devark/internal/sanitize"
)

func sampleSession() *parser.SessionData {
	ts := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	return &parser.SessionData{
		ID:              "my-project/chat.jsonl/abc-123",
		ToolSessionID:   "abc-123",
		Tool:            parser.ToolClaude,
		ProjectPath:     "/home/dev/workspaces/my-project",
		GitBranch:       "main",
		Timestamp:       ts,
		DurationSeconds: 300,
		Messages: []parser.Message{
			{Role: "user", Content: "my key is sk-ant-api03-secretsecret", Timestamp: ts},
			{Role: "assistant", Content: "stored under /home/dev/.config/app", Timestamp: ts.Add(30 * time.Second)},
		},
		EditedFiles: []string{"/home/dev/workspaces/my-project/main.go"},
		Languages:   []string{"Go"},
	}
}

func TestToSanitizedBasics(t *testing.T) {
	out := ToSanitized(sampleSession())

	assert.Equal(t, "my-project/chat.jsonl/abc-123", out.ID)
	assert.Equal(t, "claude", out.Tool)
	assert.Equal(t, "abc-123", out.ToolSessionID)
	assert.Equal(t, "2025-03-10T14:00:00Z", out.Timestamp)
	assert.Equal(t, 300, out.DurationSeconds)
	assert.Equal(t, "my-project", out.Data.ProjectName)
	assert.Equal(t, 2, out.Data.MessageCount)
}

func TestToSanitizedMessageSummaryIsJSONArray(t *testing.T) {
	out := ToSanitized(sampleSession())

	var msgs []sanitize.Message
	require.NoError(t, json.Unmarshal([]byte(out.Data.MessageSummary), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.NotContains(t, msgs[0].Content, "sk-ant")
	assert.Contains(t, msgs[0].Content, "[REDACTED_CREDENTIAL]")
	assert.NotContains(t, msgs[1].Content, "/home/dev")
}

func TestToSanitizedCounts(t *testing.T) {
	out := ToSanitized(sampleSession())

	assert.Equal(t, 1, out.SanitizationMetadata.Credentials)
	assert.Equal(t, 1, out.SanitizationMetadata.Paths)
}

func TestToSanitizedMetadata(t *testing.T) {
	sess := sampleSession()
	sess.ModelUsage = &parser.ModelUsage{
		Models:       []string{"claude-sonnet-4"},
		PrimaryModel: "claude-sonnet-4",
		SwitchCount:  0,
	}
	out := ToSanitized(sess)

	assert.Equal(t, 1, out.Data.Metadata["files_edited"])
	assert.Equal(t, []string{"Go"}, out.Data.Metadata["languages"])
	assert.Equal(t, "main", out.Data.Metadata["git_branch"])
	assert.Equal(t, []string{"claude-sonnet-4"}, out.Data.Metadata["models"])
}

func TestToSanitizedNoMessages(t *testing.T) {
	sess := sampleSession()
	sess.Messages = nil
	out := ToSanitized(sess)

	assert.Equal(t, 0, out.Data.MessageCount)
	assert.Equal(t, "[]", out.Data.MessageSummary)
	assert.Equal(t, 0, out.SanitizationMetadata.Total())
}
