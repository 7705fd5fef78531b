// Package transform converts parsed sessions into the sanitized
// payloads the upload API accepts.
package transform

import (
	"encoding/json"

	"github.com/devark-ai/devark/internal/parser"
	"github.com/devark-ai/devark/internal/sanitize"
	"github.com/devark-ai/devark/internal/timeutil"
)

// SessionPayload is the data object inside a SanitizedSession.
type SessionPayload struct {
	ProjectName string `json:"projectName"`
	// MessageSummary is the JSON-encoding of the sanitized
	// message array. Wire-compatibility contract: a string
	// holding a JSON array, not a statistics object.
	MessageSummary string         `json:"messageSummary"`
	MessageCount   int            `json:"messageCount"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// SanitizedSession is the upload-ready form of one session. It
// is produced per upload attempt and never retained.
type SanitizedSession struct {
	ID                   string          `json:"id"`
	Tool                 string          `json:"tool"`
	Timestamp            string          `json:"timestamp"`
	DurationSeconds      int             `json:"durationSeconds"`
	ToolSessionID        string          `json:"toolSessionId,omitempty"`
	Data                 SessionPayload  `json:"data"`
	SanitizationMetadata sanitize.Counts `json:"sanitizationMetadata"`
}

// ToSanitized sanitizes a session's messages and assembles the
// upload payload.
func ToSanitized(sess *parser.SessionData) SanitizedSession {
	msgs := make([]sanitize.Message, len(sess.Messages))
	for i, m := range sess.Messages {
		msgs[i] = sanitize.Message{Role: m.Role, Content: m.Content}
	}
	sanitized, counts := sanitize.Sanitize(msgs)

	// Marshaling a slice of plain string fields cannot fail.
	summary, _ := json.Marshal(sanitized)

	metadata := map[string]any{
		"files_edited": len(sess.EditedFiles),
		"languages":    sess.Languages,
	}
	if sess.GitBranch != "" {
		metadata["git_branch"] = sess.GitBranch
	}
	if sess.ModelUsage != nil {
		metadata["models"] = sess.ModelUsage.Models
		metadata["model_switches"] = sess.ModelUsage.SwitchCount
	}
	if sess.Planning != nil {
		metadata["planning_cycles"] = sess.Planning.Cycles
	}
	if sess.TokenUsage.TotalTokens > 0 {
		metadata["total_tokens"] = sess.TokenUsage.TotalTokens
		metadata["context_utilization"] = sess.TokenUsage.ContextUtilization
	}

	return SanitizedSession{
		ID:              sess.ID,
		Tool:            string(sess.Tool),
		Timestamp:       timeutil.Format(sess.Timestamp),
		DurationSeconds: sess.DurationSeconds,
		ToolSessionID:   sess.ToolSessionID,
		Data: SessionPayload{
			ProjectName:    parser.ProjectNameFromPath(sess.ProjectPath),
			MessageSummary: string(summary),
			MessageCount:   len(sess.Messages),
			Metadata:       metadata,
		},
		SanitizationMetadata: counts,
	}
}
