// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agentline-tui/internal/turn"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
	"github.com/jeranaias/agentline-tui/internal/util"
)

// =============================================================================
// TOOL CALL CARD
// =============================================================================

// ToolCard renders a single tool call from the turn ledger: its status
// marker, name, argument summary, and result preview.
type ToolCard struct {
	Call     turn.ToolCall
	Width    int
	Expanded bool

	theme *styles.Theme
}

// NewToolCard creates a card for the given tool call.
func NewToolCard(theme *styles.Theme, call turn.ToolCall) ToolCard {
	return ToolCard{
		Call:  call,
		Width: 80,
		theme: theme,
	}
}

// maxResultLines bounds the result preview in collapsed and expanded views.
const (
	collapsedResultLines = 3
	expandedResultLines  = 40
)

// View renders the card.
func (c ToolCard) View() string {
	var b strings.Builder

	marker, markerStyle := c.statusMarker()
	b.WriteString(markerStyle.Render(marker))
	b.WriteString(" ")
	b.WriteString(c.theme.ToolName.Render(c.Call.Name))

	if summary := c.argSummary(); summary != "" {
		b.WriteString(" ")
		b.WriteString(c.theme.Timestamp.Render(summary))
	}

	if preview := c.resultPreview(); preview != "" {
		b.WriteString("\n")
		b.WriteString(preview)
	}

	return b.String()
}

// statusMarker picks the ASCII marker and style for the call's state.
func (c ToolCard) statusMarker() (string, lipgloss.Style) {
	switch {
	case c.Call.AwaitingInput:
		return styles.StatusIndicators.Question, c.theme.ToolAwaiting
	case !c.Call.HasResult:
		return styles.StatusIndicators.Pending, c.theme.ToolRunning
	case c.Call.IsError:
		return styles.StatusIndicators.Error, c.theme.ToolError
	default:
		return styles.StatusIndicators.Success, c.theme.ToolSuccess
	}
}

// argSummary produces a one-line summary of the call arguments.
func (c ToolCard) argSummary() string {
	text := strings.TrimSpace(c.Call.ArgsText)
	if text == "" || text == "{}" || text == "null" {
		return ""
	}
	text = strings.ReplaceAll(text, "\n", " ")

	max := c.Width - len(c.Call.Name) - 8
	if max < 16 {
		max = 16
	}
	return util.TruncateRunes(text, max)
}

// resultPreview renders the result body, truncated by expansion state.
func (c ToolCard) resultPreview() string {
	if !c.Call.HasResult {
		return ""
	}
	result := strings.TrimRight(c.Call.Result, "\n")
	if result == "" {
		return ""
	}

	maxLines := collapsedResultLines
	if c.Expanded {
		maxLines = expandedResultLines
	}

	lines := strings.Split(result, "\n")
	truncated := false
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		truncated = true
	}

	maxWidth := c.Width - 6
	if maxWidth < 16 {
		maxWidth = 16
	}
	for i, line := range lines {
		lines[i] = util.TruncateWidth(line, maxWidth)
	}
	if truncated {
		lines = append(lines, "...")
	}

	return c.theme.ToolDetail.Render(strings.Join(lines, "\n"))
}

// RenderToolCalls renders every call in ledger order, one card per call.
func RenderToolCalls(theme *styles.Theme, calls []turn.ToolCall, width int) string {
	if len(calls) == 0 {
		return ""
	}

	parts := make([]string, 0, len(calls))
	for _, call := range calls {
		card := NewToolCard(theme, call)
		card.Width = width
		parts = append(parts, card.View())
	}
	return strings.Join(parts, "\n")
}
