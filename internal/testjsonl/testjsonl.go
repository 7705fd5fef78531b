// Package testjsonl provides shared JSONL fixture builders for
// transcript test data. Used by the parser and sync test
// packages.
package testjsonl

import (
	"encoding/json"
	"strings"
)

// Header returns a transcript line carrying session identity.
func Header(sessionID, cwd, timestamp string) string {
	return HeaderWithBranch(sessionID, cwd, timestamp, "")
}

// HeaderWithBranch returns a session identity line with an
// optional gitBranch field.
func HeaderWithBranch(sessionID, cwd, timestamp, branch string) string {
	m := map[string]any{
		"sessionId": sessionID,
		"cwd":       cwd,
		"timestamp": timestamp,
	}
	if branch != "" {
		m["gitBranch"] = branch
	}
	return mustMarshal(m)
}

// User returns a user message line with string content.
func User(content, timestamp string) string {
	return messageLine("user", content, "", timestamp)
}

// Assistant returns an assistant message line with string
// content and an optional model.
func Assistant(content, model, timestamp string) string {
	return messageLine("assistant", content, model, timestamp)
}

// AssistantBlocks returns an assistant message line whose
// content is an array of blocks.
func AssistantBlocks(blocks []map[string]any, model, timestamp string) string {
	msg := map[string]any{
		"role":    "assistant",
		"content": blocks,
	}
	if model != "" {
		msg["model"] = model
	}
	return mustMarshal(map[string]any{
		"message":   msg,
		"timestamp": timestamp,
	})
}

// UserBlocks returns a user message line whose content is an
// array of blocks.
func UserBlocks(blocks []map[string]any, timestamp string) string {
	return mustMarshal(map[string]any{
		"message": map[string]any{
			"role":    "user",
			"content": blocks,
		},
		"timestamp": timestamp,
	})
}

// TextBlock builds a text content block.
func TextBlock(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

// ToolUseBlock builds a tool_use content block.
func ToolUseBlock(name string) map[string]any {
	return map[string]any{"type": "tool_use", "name": name}
}

// ToolResultBlock builds a tool_result content block.
func ToolResultBlock() map[string]any {
	return map[string]any{"type": "tool_result"}
}

// ImageBlock builds an image content block.
func ImageBlock() map[string]any {
	return map[string]any{"type": "image"}
}

// ToolUseResult returns a toolUseResult line for an edited file.
func ToolUseResult(kind, filePath, timestamp string) string {
	return mustMarshal(map[string]any{
		"toolUseResult": map[string]any{
			"type":     kind,
			"filePath": filePath,
		},
		"timestamp": timestamp,
	})
}

// JoinJSONL joins lines into a JSONL document with a trailing
// newline.
func JoinJSONL(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func messageLine(role, content, model, timestamp string) string {
	msg := map[string]any{
		"role":    role,
		"content": content,
	}
	if model != "" {
		msg["model"] = model
	}
	return mustMarshal(map[string]any{
		"message":   msg,
		"timestamp": timestamp,
	})
}

func mustMarshal(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return string(b)
}
