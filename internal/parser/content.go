package parser

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// extractedContent is the result of flattening a message's
// content field into display text.
type extractedContent struct {
	Text     string
	ToolUses []string
}

// extractContent flattens a message content field. String
// content passes through unchanged. Array content joins text
// blocks on newlines, replaces tool_use blocks with
// "[Tool: <name>]" and tool_result blocks with "[Tool result]",
// and drops image blocks, appending a count suffix when any
// were present.
func extractContent(content gjson.Result) extractedContent {
	if content.Type == gjson.String {
		return extractedContent{Text: content.Str}
	}
	if !content.IsArray() {
		return extractedContent{}
	}

	var (
		parts    []string
		toolUses []string
		images   int
	)
	content.ForEach(func(_, block gjson.Result) bool {
		switch block.Get("type").Str {
		case "text":
			if text := block.Get("text").Str; text != "" {
				parts = append(parts, text)
			}
		case "tool_use":
			name := block.Get("name").Str
			toolUses = append(toolUses, name)
			parts = append(parts, fmt.Sprintf("[Tool: %s]", name))
		case "tool_result":
			parts = append(parts, "[Tool result]")
		case "image", "image_url":
			images++
		}
		return true
	})

	if images > 0 {
		parts = append(parts, fmt.Sprintf(
			"[%d image attachment(s)]", images,
		))
	}

	return extractedContent{
		Text:     strings.Join(parts, "\n"),
		ToolUses: toolUses,
	}
}
