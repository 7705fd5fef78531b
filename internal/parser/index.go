package parser

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/devark-ai/devark/internal/derive"
	"github.com/devark-ai/devark/internal/timeutil"
)

// toolOnlyRe matches content that is nothing but a tool marker.
var toolOnlyRe = regexp.MustCompile(`^\s*\[Tool[^\]]*\]\s*$`)

// isUserPrompt reports whether a user message's content is an
// actual typed prompt rather than tool plumbing.
func isUserPrompt(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "[Tool result]") ||
		strings.HasPrefix(trimmed, "[Tool:") {
		return false
	}
	return !toolOnlyRe.MatchString(trimmed)
}

// ReadIndex is the fast path: it recovers per-session summary
// rows without building full SessionData records. Results are
// sorted descending by timestamp.
func (r *Reader) ReadIndex(opts ReadOptions) []IndexEntry {
	files, err := discoverSessionFiles(r.fs, r.root)
	if err != nil {
		return nil
	}

	var entries []IndexEntry
	for _, file := range files {
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			break
		}
		if shouldSkipSince(r.fs, file, opts.Since) {
			continue
		}
		entry, ok := r.indexFile(file)
		if !ok {
			continue
		}
		if !opts.Since.IsZero() && !entry.Timestamp.After(opts.Since) {
			continue
		}
		if opts.ProjectPath != "" && !strings.HasPrefix(
			strings.ToLower(entry.ProjectPath),
			strings.ToLower(opts.ProjectPath),
		) {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

// indexFile scans a transcript for identity, timestamps, and
// prompt count without extracting full message content.
func (r *Reader) indexFile(file discoveredFile) (IndexEntry, bool) {
	f, err := r.fs.Open(file.Path)
	if err != nil {
		return IndexEntry{}, false
	}
	defer f.Close()

	var (
		sessionID   string
		cwd         string
		firstTS     time.Time
		timestamps  []time.Time
		promptCount int
	)

	lr := newLineReader(f)
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		if !gjson.Valid(line) {
			continue
		}

		ts := timeutil.Parse(gjson.Get(line, "timestamp").Str)

		if sessionID == "" {
			sid := gjson.Get(line, "sessionId").Str
			lineCwd := gjson.Get(line, "cwd").Str
			if sid != "" && lineCwd != "" && !ts.IsZero() {
				sessionID = sid
				cwd = lineCwd
				firstTS = ts
			}
		}

		msg := gjson.Get(line, "message")
		if !msg.Exists() {
			continue
		}
		if !ts.IsZero() {
			timestamps = append(timestamps, ts)
		}
		if msg.Get("role").Str == "user" {
			if isUserPrompt(extractContent(msg.Get("content")).Text) {
				promptCount++
			}
		}
	}

	if sessionID == "" || len(timestamps) == 0 {
		return IndexEntry{}, false
	}

	return IndexEntry{
		ID: file.ProjectDir + "/" + file.Name + "/" +
			sessionID,
		Source:        ToolClaude,
		Timestamp:     firstTS,
		Duration:      derive.ActiveDuration(timestamps).DurationSeconds,
		ProjectPath:   cwd,
		WorkspaceName: ProjectNameFromPath(cwd),
		PromptCount:   promptCount,
	}, true
}

// ProjectNameFromPath returns the last non-empty path segment
// under either separator, or "unknown".
func ProjectNameFromPath(projectPath string) string {
	normalized := strings.ReplaceAll(projectPath, "\\", "/")
	segments := strings.Split(normalized, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return "unknown"
}
