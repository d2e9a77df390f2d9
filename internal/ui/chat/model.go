// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentline-tui/internal/agent"
	"github.com/jeranaias/agentline-tui/internal/config"
	"github.com/jeranaias/agentline-tui/internal/model"
	"github.com/jeranaias/agentline-tui/internal/session"
	"github.com/jeranaias/agentline-tui/internal/ui/components"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady         State = iota // Ready for input
	StateStreaming                  // Receiving a streamed turn
	StateAwaitingInput              // Turn paused on an agent question
	StateError                      // Showing an error
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State

	// Styling
	theme *styles.Theme
	cfg   *config.Config

	// Dimensions
	width  int
	height int

	// Backend
	client   *agent.Client
	sessions *session.Manager

	// Conversation transcript
	conversation *model.Conversation

	// In-flight turn
	stream         *streamHandle
	cancelMgr      *cancelManager
	streamingMsgID string
	turnStart      time.Time

	// Question form shown while the turn awaits input
	form *components.QuestionForm

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner
	markdown *components.MarkdownRenderer
	keyMap   KeyMap

	// Status
	backendUp  bool
	statusNote string
	lastErr    error
}

// New creates a new chat model.
func New(theme *styles.Theme, cfg *config.Config, client *agent.Client) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask the agent..."
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{
		state:        StateReady,
		theme:        theme,
		cfg:          cfg,
		client:       client,
		sessions:     client.Sessions(),
		conversation: model.NewConversation(),
		cancelMgr:    newCancelManager(),
		viewport:     vp,
		input:        ti,
		spinner:      components.NewThinkingSpinner(),
		markdown:     components.NewMarkdownRenderer(78),
		keyMap:       DefaultKeyMap(),
	}
}

// Init starts the backend health probe and cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		checkBackendCmd(m.client),
		textinput.Blink,
	)
}

// Conversation exposes the transcript, used by tests and export.
func (m Model) Conversation() *model.Conversation {
	return m.conversation
}

// State returns the current view state.
func (m Model) State() State {
	return m.state
}

// streamingMessage returns the assistant message for the in-flight
// turn, or nil when the id no longer matches the transcript tail.
func (m *Model) streamingMessage() *model.Message {
	last := m.conversation.Last()
	if last == nil || last.ID != m.streamingMsgID {
		return nil
	}
	return last
}

// handleResize recomputes component dimensions.
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	contentWidth := width - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	m.markdown.SetWidth(contentWidth)

	// header + input area + status bar
	viewportHeight := height - 1 - 3 - 1
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = viewportHeight
	m.input.Width = width - 4

	m.refreshViewport(false)
}
