// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/agentline-tui/internal/turn"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
)

func TestToolCardMarkers(t *testing.T) {
	theme := styles.NewTheme()

	tests := []struct {
		name string
		call turn.ToolCall
		want string
	}{
		{"running", turn.ToolCall{Name: "Bash"}, styles.StatusIndicators.Pending},
		{"success", turn.ToolCall{Name: "Bash", HasResult: true, Result: "ok"}, styles.StatusIndicators.Success},
		{"error", turn.ToolCall{Name: "Bash", HasResult: true, Result: "boom", IsError: true}, styles.StatusIndicators.Error},
		{"awaiting", turn.ToolCall{Name: "AskUserQuestion", AwaitingInput: true}, styles.StatusIndicators.Question},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewToolCard(theme, tt.call).View()
			if !strings.Contains(view, tt.want) {
				t.Errorf("view missing marker %q:\n%s", tt.want, view)
			}
			if !strings.Contains(view, tt.call.Name) {
				t.Errorf("view missing tool name:\n%s", view)
			}
		})
	}
}

func TestToolCardResultTruncation(t *testing.T) {
	theme := styles.NewTheme()
	long := strings.Repeat("line\n", 20)

	card := NewToolCard(theme, turn.ToolCall{
		Name:      "Read",
		HasResult: true,
		Result:    long,
	})
	view := card.View()

	if got := strings.Count(view, "line"); got > collapsedResultLines {
		t.Errorf("collapsed view shows %d result lines, want <= %d", got, collapsedResultLines)
	}
	if !strings.Contains(view, "...") {
		t.Error("truncated result should end with ellipsis")
	}

	card.Expanded = true
	expanded := card.View()
	if strings.Count(expanded, "line") <= collapsedResultLines {
		t.Error("expanded view should show more result lines")
	}
}

func TestRenderToolCallsKeepsOrder(t *testing.T) {
	theme := styles.NewTheme()
	calls := []turn.ToolCall{
		{Name: "First", HasResult: true, Result: "a"},
		{Name: "Second"},
	}

	out := RenderToolCalls(theme, calls, 80)
	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	if first == -1 || second == -1 || first > second {
		t.Errorf("calls rendered out of order:\n%s", out)
	}

	if RenderToolCalls(theme, nil, 80) != "" {
		t.Error("no calls should render empty")
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		usd  float64
		want string
	}{
		{0.0042, "$0.0042"},
		{0.25, "$0.25"},
		{1.5, "$1.50"},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.usd); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.usd, got, tt.want)
		}
	}
}
