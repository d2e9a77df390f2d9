// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentline-tui/internal/agent"
	"github.com/jeranaias/agentline-tui/internal/debuglog"
	"github.com/jeranaias/agentline-tui/internal/turn"
	"github.com/jeranaias/agentline-tui/internal/ui/components"
)

// errNoQuestionPayload marks a user_input_required event whose question
// payload could not be parsed from either location.
var errNoQuestionPayload = errors.New("agent asked for input but sent no readable questions")

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// checkBackendCmd probes the backend health endpoint.
func checkBackendCmd(client *agent.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := client.CheckRunning(ctx)
		return BackendStatusMsg{Running: err == nil, Err: err}
	}
}

// runSendCmd runs the chat call for one turn on a goroutine, feeding
// events into the handle, and reports the final snapshot.
func (m *Model) runSendCmd(message string) tea.Cmd {
	client, handle, msgID := m.client, m.stream, m.streamingMsgID

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	return func() tea.Msg {
		err := client.Send(ctx, message, handle.Apply)
		snap := handle.Finish(err)
		return StreamDoneMsg{MessageID: msgID, Snapshot: snap, Err: err}
	}
}

// runRespondCmd resumes the paused turn with the serialized answers.
func (m *Model) runRespondCmd(response string) tea.Cmd {
	client, handle, msgID := m.client, m.stream, m.streamingMsgID

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	return func() tea.Msg {
		err := client.Respond(ctx, response, handle.Apply)
		snap := handle.Finish(err)
		return StreamDoneMsg{MessageID: msgID, Snapshot: snap, Err: err}
	}
}

// clearSessionCmd discards the server-side session.
func clearSessionCmd(client *agent.Client, oldID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := client.DeleteSession(ctx, oldID)
		return SessionClearedMsg{OldID: oldID, Err: err}
	}
}

// noteExpiryCmd clears the status note after a short delay.
func noteExpiryCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusNoteExpiredMsg{}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		return m, nil

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case BackendStatusMsg:
		m.backendUp = msg.Running
		if !msg.Running {
			m.statusNote = "backend unreachable"
			return m, noteExpiryCmd()
		}
		return m, nil

	case SessionClearedMsg:
		if msg.Err != nil {
			debuglog.Printf("session delete failed: %v", msg.Err)
		}
		m.statusNote = "new session"
		return m, noteExpiryCmd()

	case AnswerRejectedMsg:
		m.statusNote = msg.Err.Error()
		return m, noteExpiryCmd()

	case statusNoteExpiredMsg:
		m.statusNote = ""
		return m, nil
	}

	// Spinner ticks and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes key presses by state.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.cancelMgr.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateStreaming || m.state == StateAwaitingInput {
			m.cancelMgr.cancel()
			// StreamDoneMsg with context.Canceled follows from the
			// streaming goroutine; a paused turn has no goroutine, so
			// close it out here.
			if m.state == StateAwaitingInput {
				return m.abandonPausedTurn()
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewSession):
		return m.startNewSession()

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// Question form captures everything else while a turn is paused.
	if m.state == StateAwaitingInput && m.form != nil {
		cmd := m.form.Update(msg)
		if m.form.Complete() {
			return m.submitAnswers()
		}
		return m, cmd
	}

	if key.Matches(msg, m.keyMap.Send) {
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// submitInput starts a new turn from the input line.
func (m Model) submitInput() (Model, tea.Cmd) {
	if m.state == StateStreaming {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")

	m.conversation.AddUserMessage(text)
	assistant := m.conversation.AddAssistantMessage()

	m.state = StateStreaming
	m.lastErr = nil
	m.form = nil
	m.streamingMsgID = assistant.ID
	m.turnStart = time.Now()
	m.stream = newStreamHandle(m.sessions)

	m.refreshViewport(true)

	return m, tea.Batch(
		m.spinner.Start(),
		m.runSendCmd(text),
		streamTickCmd(),
		func() tea.Msg {
			return StreamStartMsg{MessageID: assistant.ID, StartTime: m.turnStart}
		},
	)
}

// submitAnswers posts the completed question form back to the agent and
// resumes streaming the same turn.
func (m Model) submitAnswers() (Model, tea.Cmd) {
	pending := m.stream.PendingPrompt()
	if pending == nil {
		m.state = StateStreaming
		return m, streamTickCmd()
	}

	response, err := pending.Answer(m.form.Answers())
	if err != nil {
		// Already answered elsewhere; drop the form and resume waiting.
		m.form = nil
		m.state = StateStreaming
		return m, tea.Batch(
			func() tea.Msg { return AnswerRejectedMsg{Err: err} },
			streamTickCmd(),
		)
	}

	m.form = nil
	m.state = StateStreaming
	m.refreshViewport(true)

	return m, tea.Batch(
		m.spinner.Start(),
		m.runRespondCmd(response),
		streamTickCmd(),
	)
}

// handleStreamTick folds the latest snapshot into the transcript.
func (m Model) handleStreamTick() (Model, tea.Cmd) {
	if m.state != StateStreaming && m.state != StateAwaitingInput {
		return m, nil
	}
	if m.stream == nil {
		return m, nil
	}

	snap, changed := m.stream.Latest()
	if changed {
		if msg := m.streamingMessage(); msg != nil {
			msg.ApplySnapshot(snap)
		}
		m.refreshViewport(true)
	}

	// Keep polling while the turn is live.
	if m.state == StateStreaming {
		return m, streamTickCmd()
	}
	return m, nil
}

// handleStreamDone closes out the streaming call. A turn that paused on
// a question arrives here with status awaiting-input and stays open.
func (m Model) handleStreamDone(done StreamDoneMsg) (Model, tea.Cmd) {
	if done.MessageID != m.streamingMsgID {
		return m, nil // stale completion from a superseded turn
	}

	m.spinner.Stop()
	snap := done.Snapshot

	if msg := m.streamingMessage(); msg != nil {
		msg.ApplySnapshot(snap)
	}

	switch snap.Status {
	case turn.StatusAwaitingInput:
		m.state = StateAwaitingInput
		if pending := m.stream.PendingPrompt(); pending != nil {
			m.form = components.NewQuestionForm(m.theme, pending)
			m.form.Width = m.width
		} else {
			// Question event without a payload we could parse; nothing
			// to ask, so fail the turn visibly instead of hanging.
			m.state = StateError
			m.lastErr = errNoQuestionPayload
		}

	case turn.StatusComplete:
		m.state = StateReady
		m.sessions.RecordTurn(snap.Cost)
		m.conversation.RecordCost(snap.Cost)

	case turn.StatusCancelled:
		m.state = StateReady
		m.statusNote = "cancelled"

	default: // StatusError
		m.state = StateError
		m.lastErr = done.Err
		if done.Err == nil && snap.ErrText != "" {
			m.lastErr = errors.New(snap.ErrText)
		}
	}

	m.refreshViewport(true)

	if m.statusNote != "" {
		return m, noteExpiryCmd()
	}
	return m, nil
}

// abandonPausedTurn cancels a turn stuck on an unanswered question.
func (m Model) abandonPausedTurn() (Model, tea.Cmd) {
	snap := m.stream.Finish(context.Canceled)
	if msg := m.streamingMessage(); msg != nil {
		msg.ApplySnapshot(snap)
	}
	m.form = nil
	m.state = StateReady
	m.statusNote = "cancelled"
	m.refreshViewport(true)
	return m, noteExpiryCmd()
}

// startNewSession drops local and server-side session state.
func (m Model) startNewSession() (Model, tea.Cmd) {
	if m.state == StateStreaming || m.state == StateAwaitingInput {
		return m, nil // finish or cancel the turn first
	}

	oldID := m.sessions.Reset()
	m.conversation.Clear()
	m.conversation.AddSystemMessage("Started a new session.")
	m.state = StateReady
	m.lastErr = nil
	m.refreshViewport(true)

	if oldID == "" {
		m.statusNote = "new session"
		return m, noteExpiryCmd()
	}
	return m, clearSessionCmd(m.client, oldID)
}
