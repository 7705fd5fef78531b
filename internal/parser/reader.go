package parser

import (
	"fmt"
	"log"
	"sort"
	"time"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/devark-ai/devark/internal/derive"
	"github.com/devark-ai/devark/internal/timeutil"
)

// claudeSkipPrefixes mark Claude-injected user messages that are
// never meaningful highlights.
var claudeSkipPrefixes = []string{
	"<command-name>",
	"<local-command-",
	"Caveat:",
}

// Reader walks a transcript root of per-project folders of JSONL
// files. All file access goes through the injected filesystem.
type Reader struct {
	fs   afero.Fs
	root string
}

// NewReader creates a reader over root, typically
// ~/.claude/projects.
func NewReader(fs afero.Fs, root string) *Reader {
	return &Reader{fs: fs, root: root}
}

// Name identifies this reader in sync results.
func (r *Reader) Name() string { return string(ToolClaude) }

// ReadSessions parses every eligible transcript under the root.
// An unreadable root yields an empty result, not an error; a
// single bad file is recorded and skipped.
func (r *Reader) ReadSessions(opts ReadOptions) ReadResult {
	var result ReadResult

	files, err := discoverSessionFiles(r.fs, r.root)
	if err != nil {
		log.Printf("reading transcript root %s: %v", r.root, err)
		return result
	}

	for _, file := range files {
		if opts.Limit > 0 && len(result.Sessions) >= opts.Limit {
			break
		}
		if shouldSkipSince(r.fs, file, opts.Since) {
			continue
		}

		sess, err := r.parseSessionFile(file)
		if err != nil {
			result.Errors = append(result.Errors, ReadError{
				File:    file.Path,
				Message: err.Error(),
			})
			continue
		}
		if sess == nil {
			continue // no usable metadata or messages
		}
		if !opts.Since.IsZero() && !sess.Timestamp.After(opts.Since) {
			continue
		}
		if opts.ProjectPath != "" && !strings.HasPrefix(
			strings.ToLower(sess.ProjectPath),
			strings.ToLower(opts.ProjectPath),
		) {
			continue
		}
		result.Sessions = append(result.Sessions, sess)
	}

	sort.Slice(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].Timestamp.Before(
			result.Sessions[j].Timestamp,
		)
	})
	return result
}

// parseSessionFile fully parses one transcript. A nil session
// with nil error means the file held no usable session.
func (r *Reader) parseSessionFile(file discoveredFile) (*SessionData, error) {
	f, err := r.fs.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer f.Close()

	var (
		sess        sessionAccumulator
		lastModel   string
		editedFiles []string
		editedSeen  = map[string]struct{}{}
	)

	lr := newLineReader(f)
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		if !gjson.Valid(line) {
			continue // malformed lines are not fatal
		}

		ts := timeutil.Parse(gjson.Get(line, "timestamp").Str)

		// Lock session identity from the first line that carries
		// the full triple.
		if sess.sessionID == "" {
			sid := gjson.Get(line, "sessionId").Str
			cwd := gjson.Get(line, "cwd").Str
			if sid != "" && cwd != "" && !ts.IsZero() {
				sess.sessionID = sid
				sess.cwd = cwd
				sess.firstTS = ts
			}
		}
		if sess.gitBranch == "" {
			sess.gitBranch = gjson.Get(line, "gitBranch").Str
		}

		if msg := gjson.Get(line, "message"); msg.Exists() {
			role := msg.Get("role").Str
			extracted := extractContent(msg.Get("content"))
			if extracted.Text != "" {
				sess.messages = append(sess.messages, Message{
					Role:      role,
					Content:   extracted.Text,
					Timestamp: ts,
				})
			}

			if role == "assistant" {
				if model := msg.Get("model").Str; model != "" {
					if sess.modelCounts == nil {
						sess.modelCounts = map[string]int{}
					}
					if _, seen := sess.modelCounts[model]; !seen {
						sess.modelOrder = append(sess.modelOrder, model)
					}
					sess.modelCounts[model]++
					if lastModel != "" && model != lastModel {
						sess.modelSwitches++
					}
					lastModel = model
				}
				for _, tool := range extracted.ToolUses {
					if tool == "ExitPlanMode" && !ts.IsZero() {
						sess.planExits = append(sess.planExits, ts)
					}
				}
			}
		}

		if tur := gjson.Get(line, "toolUseResult"); tur.Exists() {
			kind := tur.Get("type").Str
			path := tur.Get("filePath").Str
			if (kind == "create" || kind == "update") && path != "" {
				if _, seen := editedSeen[path]; !seen {
					editedSeen[path] = struct{}{}
					editedFiles = append(editedFiles, path)
				}
			}
		}
	}

	if sess.sessionID == "" || len(sess.messages) == 0 {
		return nil, nil
	}

	return sess.build(file, editedFiles), nil
}

// sessionAccumulator collects per-line state during a full parse.
type sessionAccumulator struct {
	sessionID     string
	cwd           string
	gitBranch     string
	firstTS       time.Time
	messages      []Message
	modelCounts   map[string]int
	modelOrder    []string
	modelSwitches int
	planExits     []time.Time
}

// build assembles the final SessionData with all derivations.
func (a *sessionAccumulator) build(
	file discoveredFile, editedFiles []string,
) *SessionData {
	timestamps := make([]time.Time, len(a.messages))
	for i, m := range a.messages {
		timestamps[i] = m.Timestamp
	}
	duration := derive.ActiveDuration(timestamps)

	deriveMsgs := make([]derive.Message, len(a.messages))
	for i, m := range a.messages {
		deriveMsgs[i] = derive.Message{Role: m.Role, Content: m.Content}
	}

	sess := &SessionData{
		ID: file.ProjectDir + "/" + file.Name + "/" +
			a.sessionID,
		ToolSessionID:   a.sessionID,
		Tool:            ToolClaude,
		ProjectPath:     a.cwd,
		GitBranch:       a.gitBranch,
		Timestamp:       a.firstTS,
		Messages:        a.messages,
		DurationSeconds: duration.DurationSeconds,
		ActiveGaps:      duration.ActiveGaps,
		IdleGaps:        duration.IdleGaps,
		EditedFiles:     editedFiles,
		Languages:       derive.LanguagesFromPaths(editedFiles),
		Highlights: derive.ExtractHighlights(
			deriveMsgs, claudeSkipPrefixes,
		),
		SourceFile: file.Path,
	}

	if len(a.modelOrder) > 0 {
		primary := a.modelOrder[0]
		for _, m := range a.modelOrder {
			if a.modelCounts[m] > a.modelCounts[primary] {
				primary = m
			}
		}
		models := append([]string(nil), a.modelOrder...)
		sort.Strings(models)
		sess.ModelUsage = &ModelUsage{
			Models:        models,
			PrimaryModel:  primary,
			MessageCounts: a.modelCounts,
			SwitchCount:   a.modelSwitches,
		}
		sess.TokenUsage = derive.CountTokens(deriveMsgs, primary)
	} else {
		sess.TokenUsage = derive.CountTokens(deriveMsgs, "")
	}

	if len(a.planExits) > 0 {
		sess.Planning = &PlanningStats{
			Cycles:    len(a.planExits),
			ExitTimes: a.planExits,
		}
	}
	return sess
}
