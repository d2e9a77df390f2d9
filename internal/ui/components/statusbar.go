// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agentline-tui/internal/session"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
	"github.com/jeranaias/agentline-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom status line: activity state, session info,
// accumulated cost, and key hints.
type StatusBar struct {
	Width    int
	State    string // "ready", "streaming", "waiting for answer", ...
	Session  session.Status
	ShowCost bool

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{
		Width:    80,
		State:    "ready",
		ShowCost: true,
		theme:    theme,
	}
}

// shortcuts shown on the right edge, narrowest-first when space is tight.
var statusShortcuts = []struct{ key, desc string }{
	{"enter", "send"},
	{"esc", "cancel"},
	{"ctrl+n", "new session"},
	{"ctrl+c", "quit"},
}

// View renders the status bar at the configured width.
func (s StatusBar) View() string {
	left := s.leftSegment()
	right := s.rightSegment()

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = s.Width - lipgloss.Width(left) - 2
		if gap < 1 {
			gap = 1
		}
	}

	return s.theme.StatusBar.Width(s.Width).Render(
		left + strings.Repeat(" ", gap) + right,
	)
}

// leftSegment shows activity, session, and cost.
func (s StatusBar) leftSegment() string {
	parts := []string{s.theme.SessionInfo.Render(s.State)}

	if s.Session.Active {
		id := util.TruncateRunesNoEllipsis(s.Session.SessionID, 8)
		parts = append(parts, s.theme.SessionInfo.Render("session "+id))
		if s.Session.Turns > 0 {
			parts = append(parts, s.theme.CostInfo.Render(fmt.Sprintf("%d turns", s.Session.Turns)))
		}
	} else {
		parts = append(parts, s.theme.CostInfo.Render("no session"))
	}

	if s.ShowCost && s.Session.TotalCost > 0 {
		parts = append(parts, s.theme.CostInfo.Render(FormatCost(s.Session.TotalCost)))
	}

	return strings.Join(parts, s.theme.CostInfo.Render(" | "))
}

// rightSegment shows key hints, dropping entries that do not fit.
func (s StatusBar) rightSegment() string {
	budget := s.Width / 2
	var parts []string
	used := 0
	for _, sc := range statusShortcuts {
		entry := s.theme.ShortcutKey.Render(sc.key) + s.theme.ShortcutDesc.Render(" "+sc.desc)
		w := lipgloss.Width(entry) + 2
		if used+w > budget {
			break
		}
		parts = append(parts, entry)
		used += w
	}
	return strings.Join(parts, "  ")
}

// FormatCost formats a USD amount the way the backend reports it:
// sub-cent values keep four decimals so small turns still register.
func FormatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
