// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// CONTAINER AND HEADER STYLES
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel    lipgloss.Style
	AgentLabel   lipgloss.Style
	SystemLabel  lipgloss.Style
	UserBubble   lipgloss.Style
	AgentBubble  lipgloss.Style
	SystemNotice lipgloss.Style
	Timestamp    lipgloss.Style

	// ==========================================================================
	// TOOL CALL CARD STYLES
	// ==========================================================================

	ToolRunning  lipgloss.Style
	ToolSuccess  lipgloss.Style
	ToolError    lipgloss.Style
	ToolAwaiting lipgloss.Style
	ToolName     lipgloss.Style
	ToolDetail   lipgloss.Style

	// ==========================================================================
	// QUESTION FORM STYLES
	// ==========================================================================

	QuestionBox      lipgloss.Style
	QuestionHeader   lipgloss.Style
	QuestionText     lipgloss.Style
	Option           lipgloss.Style
	OptionSelected   lipgloss.Style
	OptionChecked    lipgloss.Style
	OptionDesc       lipgloss.Style
	QuestionAnswered lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	SessionInfo  lipgloss.Style
	CostInfo     lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER AND ERROR STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
}

// ApplyBackground forces light/dark rendering based on the configured
// theme name. An empty or unknown name leaves terminal detection alone.
func ApplyBackground(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Foreground(UserBubbleBorder).
		Bold(true)

	t.AgentLabel = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.SystemLabel = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)

	t.AgentBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AgentBubbleBorder).
		PaddingLeft(1)

	t.SystemNotice = lipgloss.NewStyle().
		Foreground(SystemFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(SystemBorder).
		PaddingLeft(1).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Tool call cards
	t.ToolRunning = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.ToolSuccess = lipgloss.NewStyle().
		Foreground(ToolSuccessFg).
		PaddingLeft(2)

	t.ToolError = lipgloss.NewStyle().
		Foreground(ToolErrorFg).
		PaddingLeft(2)

	t.ToolAwaiting = lipgloss.NewStyle().
		Foreground(Amber).
		PaddingLeft(2)

	t.ToolName = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ToolDetail = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(4)

	// Question form
	t.QuestionBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(1, 2)

	t.QuestionHeader = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.QuestionText = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.Option = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.OptionSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(TextInverse).
		Bold(true).
		PaddingLeft(2)

	t.OptionChecked = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true).
		PaddingLeft(2)

	t.OptionDesc = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(4)

	t.QuestionAnswered = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.SessionInfo = lipgloss.NewStyle().
		Foreground(Teal)

	t.CostInfo = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and errors
	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}
