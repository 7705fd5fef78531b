package parser

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devark-ai/devark/internal/testjsonl"
)

const root = "/home/dev/.claude/projects"

func writeTranscript(t *testing.T, fs afero.Fs, project, name, content string) {
	t.Helper()
	dir := root + "/" + project
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(
		fs, dir+"/"+name, []byte(content), 0o644,
	))
}

func ts(offset int) string {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(offset) * time.Second).Format(time.RFC3339)
}

func basicTranscript() string {
	return testjsonl.JoinJSONL(
		testjsonl.HeaderWithBranch("sess-1", "/home/dev/webapp", ts(0), "main"),
		testjsonl.User("Fix the login redirect bug", ts(0)),
		testjsonl.Assistant("Looking at the auth flow now", "claude-3-5-sonnet-20241022", ts(30)),
		testjsonl.User("Thanks, also check the tests", ts(90)),
		testjsonl.Assistant("Both fixed and tests updated", "claude-3-5-sonnet-20241022", ts(150)),
	)
}

func TestReadSessions_Basic(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "c--home-dev-webapp", "sess-1.jsonl", basicTranscript())

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)
	require.Empty(t, result.Errors)

	sess := result.Sessions[0]
	assert.Equal(t, "c--home-dev-webapp/sess-1.jsonl/sess-1", sess.ID)
	assert.Equal(t, "sess-1", sess.ToolSessionID)
	assert.Equal(t, ToolClaude, sess.Tool)
	assert.Equal(t, "/home/dev/webapp", sess.ProjectPath)
	assert.Equal(t, "main", sess.GitBranch)
	assert.Len(t, sess.Messages, 4)
	assert.Equal(t, 150, sess.DurationSeconds)

	require.NotNil(t, sess.ModelUsage)
	assert.Equal(t, "claude-3-5-sonnet-20241022", sess.ModelUsage.PrimaryModel)
	assert.Equal(t, 0, sess.ModelUsage.SwitchCount)
	assert.Equal(t, 2, sess.ModelUsage.MessageCounts["claude-3-5-sonnet-20241022"])

	assert.Equal(t, "Fix the login redirect bug", sess.Highlights.FirstUserMessage)
	assert.Positive(t, sess.TokenUsage.TotalTokens)
}

func TestReadSessions_ModelSwitches(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "s.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("s", "/home/dev/app", ts(0)),
		testjsonl.Assistant("first answer for you", "claude-3-5-haiku-20241022", ts(10)),
		testjsonl.Assistant("escalating to a larger model", "claude-3-5-sonnet-20241022", ts(20)),
		testjsonl.Assistant("more detail on the fix", "claude-3-5-sonnet-20241022", ts(30)),
	))

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)

	mu := result.Sessions[0].ModelUsage
	require.NotNil(t, mu)
	assert.Equal(t, 1, mu.SwitchCount)
	assert.Equal(t, "claude-3-5-sonnet-20241022", mu.PrimaryModel)
	assert.Equal(t, []string{
		"claude-3-5-haiku-20241022", "claude-3-5-sonnet-20241022",
	}, mu.Models)
}

func TestReadSessions_ContentFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "s.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("s", "/home/dev/app", ts(0)),
		testjsonl.AssistantBlocks([]map[string]any{
			testjsonl.TextBlock("Let me read that file"),
			testjsonl.ToolUseBlock("Read"),
		}, "", ts(10)),
		testjsonl.UserBlocks([]map[string]any{
			testjsonl.ToolResultBlock(),
			testjsonl.ImageBlock(),
			testjsonl.ImageBlock(),
		}, ts(20)),
	))

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)
	msgs := result.Sessions[0].Messages
	require.Len(t, msgs, 2)

	assert.Equal(t, "Let me read that file\n[Tool: Read]", msgs[0].Content)
	assert.Equal(t, "[Tool result]\n[2 image attachment(s)]", msgs[1].Content)
}

func TestReadSessions_EditedFilesAndLanguages(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "s.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("s", "/home/dev/app", ts(0)),
		testjsonl.User("Please add the endpoint", ts(0)),
		testjsonl.ToolUseResult("create", "/home/dev/app/server.go", ts(10)),
		testjsonl.ToolUseResult("update", "/home/dev/app/client.ts", ts(20)),
		testjsonl.ToolUseResult("update", "/home/dev/app/server.go", ts(30)),
		testjsonl.ToolUseResult("read", "/home/dev/app/ignored.py", ts(40)),
	))

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)
	sess := result.Sessions[0]

	assert.Equal(t, []string{
		"/home/dev/app/server.go", "/home/dev/app/client.ts",
	}, sess.EditedFiles)
	assert.Equal(t, []string{"Go", "TypeScript"}, sess.Languages)
}

func TestReadSessions_PlanningStats(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "s.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("s", "/home/dev/app", ts(0)),
		testjsonl.AssistantBlocks([]map[string]any{
			testjsonl.TextBlock("Here is the plan for the refactor"),
			testjsonl.ToolUseBlock("ExitPlanMode"),
		}, "", ts(60)),
	))

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)
	planning := result.Sessions[0].Planning
	require.NotNil(t, planning)
	assert.Equal(t, 1, planning.Cycles)
	require.Len(t, planning.ExitTimes, 1)
}

func TestReadSessions_RejectsUnusableFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	// No identity triple.
	writeTranscript(t, fs, "proj", "no-meta.jsonl", testjsonl.JoinJSONL(
		testjsonl.User("orphan message with no header", ts(0)),
	))
	// Identity but no messages.
	writeTranscript(t, fs, "proj", "no-msgs.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("s2", "/home/dev/app", ts(0)),
	))
	// Garbage lines around one good session.
	writeTranscript(t, fs, "proj", "good.jsonl",
		"not json at all\n"+testjsonl.JoinJSONL(
			testjsonl.Header("s3", "/home/dev/app", ts(0)),
			testjsonl.User("real user message here", ts(0)),
		)+"{broken\n")

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "s3", result.Sessions[0].ToolSessionID)
	assert.Empty(t, result.Errors)
}

func TestReadSessions_SkipsDeniedFoldersAndAgentFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	keep := testjsonl.JoinJSONL(
		testjsonl.Header("keep", "/home/dev/ext", ts(0)),
		testjsonl.User("message in the kept folder", ts(0)),
	)
	deny := testjsonl.JoinJSONL(
		testjsonl.Header("deny", "/tmp/x", ts(0)),
		testjsonl.User("message in the denied folder", ts(0)),
	)
	writeTranscript(t, fs, "c--vibelog-vibe-log-cursor-extentstion", "a.jsonl", keep)
	writeTranscript(t, fs, "C--Users-97254-AppData-Local-Temp-devark-analysis", "b.jsonl", deny)
	writeTranscript(t, fs, "c--vibelog-vibe-log-cursor-extentstion", "agent-x.jsonl", keep)
	writeTranscript(t, fs, "c--vibelog-vibe-log-cursor-extentstion", "notes.txt", keep)

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "keep", result.Sessions[0].ToolSessionID)
}

func TestReadSessions_SinceFiltering(t *testing.T) {
	fs := afero.NewMemMapFs()
	old := testjsonl.JoinJSONL(
		testjsonl.Header("old", "/home/dev/app", "2025-01-01T10:00:00Z"),
		testjsonl.User("an old session message", "2025-01-01T10:00:00Z"),
	)
	recent := testjsonl.JoinJSONL(
		testjsonl.Header("new", "/home/dev/app", ts(0)),
		testjsonl.User("a recent session message", ts(0)),
	)
	writeTranscript(t, fs, "proj", "old.jsonl", old)
	writeTranscript(t, fs, "proj", "new.jsonl", recent)

	since := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	result := NewReader(fs, root).ReadSessions(ReadOptions{Since: since})
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "new", result.Sessions[0].ToolSessionID)
}

func TestReadSessions_SinceSkipsByMtime(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "old.jsonl", basicTranscript())
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes(root+"/proj/old.jsonl", stale, stale))

	result := NewReader(fs, root).ReadSessions(ReadOptions{
		Since: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Empty(t, result.Sessions)
}

func TestReadSessions_ProjectPathFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "a", "a.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("a", "/home/dev/webapp", ts(0)),
		testjsonl.User("webapp session message", ts(0)),
	))
	writeTranscript(t, fs, "b", "b.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("b", "/home/dev/other", ts(10)),
		testjsonl.User("other project message", ts(10)),
	))

	result := NewReader(fs, root).ReadSessions(ReadOptions{
		ProjectPath: "/HOME/DEV/WEBAPP",
	})
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "a", result.Sessions[0].ToolSessionID)
}

func TestReadSessions_SortedAscendingAndLimit(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "later.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("later", "/home/dev/app", ts(3600)),
		testjsonl.User("the later session message", ts(3600)),
	))
	writeTranscript(t, fs, "proj", "earlier.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("earlier", "/home/dev/app", ts(0)),
		testjsonl.User("the earlier session message", ts(0)),
	))

	result := NewReader(fs, root).ReadSessions(ReadOptions{})
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, "earlier", result.Sessions[0].ToolSessionID)
	assert.Equal(t, "later", result.Sessions[1].ToolSessionID)

	limited := NewReader(fs, root).ReadSessions(ReadOptions{Limit: 1})
	assert.Len(t, limited.Sessions, 1)
}

func TestReadSessions_MissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	result := NewReader(fs, "/nonexistent").ReadSessions(ReadOptions{})
	assert.Empty(t, result.Sessions)
	assert.Empty(t, result.Errors)
}

func TestReadIndex(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "s.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("s", "/home/dev/webapp", ts(0)),
		testjsonl.User("Fix the login redirect bug", ts(0)),
		testjsonl.User("[Tool result] output follows", ts(10)),
		testjsonl.UserBlocks([]map[string]any{
			testjsonl.ToolResultBlock(),
		}, ts(20)),
		testjsonl.Assistant("all done with the fix", "", ts(30)),
		testjsonl.User("one more tweak please", ts(60)),
	))

	entries := NewReader(fs, root).ReadIndex(ReadOptions{})
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "proj/s.jsonl/s", e.ID)
	assert.Equal(t, ToolClaude, e.Source)
	assert.Equal(t, "/home/dev/webapp", e.ProjectPath)
	assert.Equal(t, "webapp", e.WorkspaceName)
	assert.Equal(t, 2, e.PromptCount)
	assert.Equal(t, 60, e.Duration)
}

func TestReadIndex_DescendingOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTranscript(t, fs, "proj", "a.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("a", "/home/dev/app", ts(0)),
		testjsonl.User("first session prompt here", ts(0)),
	))
	writeTranscript(t, fs, "proj", "b.jsonl", testjsonl.JoinJSONL(
		testjsonl.Header("b", "/home/dev/app", ts(7200)),
		testjsonl.User("second session prompt here", ts(7200)),
	))

	entries := NewReader(fs, root).ReadIndex(ReadOptions{})
	require.Len(t, entries, 2)
	assert.Equal(t, "proj/b.jsonl/b", entries[0].ID)
	assert.Equal(t, "proj/a.jsonl/a", entries[1].ID)
}

func TestIsUserPrompt(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"real prompt", true},
		{"", false},
		{"   ", false},
		{"[Tool result] stuff", false},
		{"[Tool: Bash] output", false},
		{"  [Tool result]  ", false},
		{"question about [Tool: Bash]", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isUserPrompt(tt.content), tt.content)
	}
}

func TestProjectNameFromPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/home/dev/webapp", "webapp"},
		{"/home/dev/webapp/", "webapp"},
		{`C:\Users\dev\webapp`, "webapp"},
		{"/", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProjectNameFromPath(tt.in), tt.in)
	}
}
