// Package parser reads append-only JSONL transcript files
// produced by AI coding assistants and assembles them into
// structured session records.
package parser

import (
	"time"

	"github.com/devark-ai/devark/internal/derive"
)

// ToolTag identifies the assistant that produced a transcript.
type ToolTag string

const ToolClaude ToolTag = "claude"

// Message is one transcript message in file order.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ModelUsage tracks which models produced assistant messages.
type ModelUsage struct {
	Models        []string       `json:"models"`
	PrimaryModel  string         `json:"primaryModel"`
	MessageCounts map[string]int `json:"messageCounts"`
	SwitchCount   int            `json:"switchCount"`
}

// PlanningStats tracks plan-mode usage within a session.
type PlanningStats struct {
	Cycles    int         `json:"cycles"`
	ExitTimes []time.Time `json:"exitTimes"`
}

// SessionData is one transcript file's worth of work. It is
// constructed by the reader and owned by the caller; nothing is
// cached across reads.
type SessionData struct {
	// ID is <projectDir>/<fileName>/<toolSessionID>.
	ID              string
	ToolSessionID   string
	Tool            ToolTag
	ProjectPath     string
	GitBranch       string
	Timestamp       time.Time
	Messages        []Message
	DurationSeconds int
	ActiveGaps      int
	IdleGaps        int
	ModelUsage      *ModelUsage
	Planning        *PlanningStats
	EditedFiles     []string
	Languages       []string
	Highlights      derive.Highlights
	TokenUsage      derive.TokenStats
	SourceFile      string
}

// IndexEntry is the cheap per-session summary produced by the
// index-only fast path.
type IndexEntry struct {
	ID            string    `json:"id"`
	Source        ToolTag   `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	Duration      int       `json:"duration"`
	ProjectPath   string    `json:"projectPath"`
	WorkspaceName string    `json:"workspaceName"`
	PromptCount   int       `json:"promptCount"`
}

// ReadOptions filter a ReadSessions or ReadIndex run.
type ReadOptions struct {
	// Since skips files and sessions older than the cutoff.
	Since time.Time
	// ProjectPath keeps only sessions whose project path starts
	// with this value (case-insensitive).
	ProjectPath string
	// Limit short-circuits enumeration once reached (0 = all).
	Limit int
}

// ReadError records a single transcript file that failed to
// parse. The run continues past it.
type ReadError struct {
	File    string
	Message string
}

// ReadResult pairs the recovered sessions with any recoverable
// per-file errors.
type ReadResult struct {
	Sessions []*SessionData
	Errors   []ReadError
}
