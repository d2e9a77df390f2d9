// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
//
// This file contains the rendering logic: header, transcript, question
// form, input area, and status bar. Layout heights must sum to the
// terminal height exactly; the viewport takes whatever the fixed rows
// leave over.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/agentline-tui/internal/model"
	"github.com/jeranaias/agentline-tui/internal/turn"
	"github.com/jeranaias/agentline-tui/internal/ui/components"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat view.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	bottom := m.renderBottom()
	status := m.renderStatusBar()

	fixed := lipgloss.Height(header) + lipgloss.Height(bottom) + lipgloss.Height(status)
	available := m.height - fixed
	if available < 1 {
		available = 1
	}

	transcript := m.viewport.View()
	if lipgloss.Height(transcript) != available {
		transcript = lipgloss.NewStyle().
			Height(available).
			MaxHeight(available).
			Width(m.width).
			Render(transcript)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, transcript, bottom, status)
}

// renderHeader renders the one-line title bar.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("agentline")
	note := ""
	if !m.backendUp {
		note = " " + m.theme.ErrorTitle.Render("(backend offline)")
	}
	return m.theme.Header.Width(m.width).Render(title + note)
}

// renderBottom renders the question form while a turn is paused and the
// input area otherwise.
func (m Model) renderBottom() string {
	if m.state == StateAwaitingInput && m.form != nil {
		return m.form.View()
	}
	return m.renderInput()
}

// renderInput renders the input area with the spinner line above it
// while a turn is streaming.
func (m Model) renderInput() string {
	var b strings.Builder

	if m.spinner.IsActive() {
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())

	return m.theme.InputContainer.Width(m.width - 2).Render(b.String())
}

// renderStatusBar renders the bottom status line.
func (m Model) renderStatusBar() string {
	bar := components.NewStatusBar(m.theme)
	bar.Width = m.width
	bar.State = m.stateLabel()
	bar.Session = m.sessions.GetStatus()
	bar.ShowCost = m.cfg.UI.ShowCost
	return bar.View()
}

func (m Model) stateLabel() string {
	if m.statusNote != "" {
		return m.statusNote
	}
	switch m.state {
	case StateStreaming:
		return "streaming"
	case StateAwaitingInput:
		return "waiting for answer"
	case StateError:
		return "error"
	default:
		return "ready"
	}
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport re-renders the transcript. followTail pins the view
// to the bottom, which is wanted while streaming.
func (m *Model) refreshViewport(followTail bool) {
	m.viewport.SetContent(m.renderTranscript())
	if followTail {
		m.viewport.GotoBottom()
	}
}

// renderTranscript renders every message in order.
func (m *Model) renderTranscript() string {
	var parts []string
	for _, msg := range m.conversation.Messages {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

// renderMessage renders one transcript entry: role label, body, tool
// call cards, and any error line.
func (m *Model) renderMessage(msg *model.Message) string {
	var b strings.Builder

	b.WriteString(m.roleLabel(msg.Role))
	b.WriteString(" ")
	b.WriteString(m.theme.Timestamp.Render(msg.Timestamp.Format("15:04")))
	b.WriteString("\n")

	if body := m.renderBody(msg); body != "" {
		b.WriteString(body)
	}

	if len(msg.ToolCalls) > 0 {
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		b.WriteString(components.RenderToolCalls(m.theme, msg.ToolCalls, m.contentWidth()))
	}

	switch msg.Status {
	case turn.StatusError:
		b.WriteString("\n")
		text := msg.ErrText
		if text == "" {
			text = "turn failed"
		}
		b.WriteString(m.theme.ErrorTitle.Render("error: " + text))
	case turn.StatusCancelled:
		b.WriteString("\n")
		b.WriteString(m.theme.Timestamp.Render("(cancelled)"))
	}

	return b.String()
}

func (m *Model) roleLabel(role model.Role) string {
	name := role.DisplayName()
	switch role {
	case model.RoleUser:
		return m.theme.UserLabel.Render(name)
	case model.RoleAssistant:
		return m.theme.AgentLabel.Render(name)
	default:
		return m.theme.SystemLabel.Render(name)
	}
}

// renderBody renders message text. Completed assistant messages get
// markdown rendering when enabled; in-flight text stays raw so partial
// markdown does not flicker through the renderer.
func (m *Model) renderBody(msg *model.Message) string {
	content := msg.Content
	if content == "" {
		return ""
	}

	switch msg.Role {
	case model.RoleUser:
		return m.theme.UserBubble.Width(m.contentWidth()).Render(content)

	case model.RoleAssistant:
		if msg.Status == turn.StatusComplete && m.cfg.UI.Markdown {
			content = strings.TrimRight(m.markdown.Render(content), "\n")
		} else if m.cfg.UI.SyntaxHighlight {
			content = components.ParseCodeBlocks(content, m.contentWidth())
		}
		return m.theme.AgentBubble.Width(m.contentWidth()).Render(content)

	default:
		return m.theme.SystemNotice.Render(content)
	}
}

func (m *Model) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}
