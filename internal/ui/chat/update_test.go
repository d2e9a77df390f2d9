// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentline-tui/internal/agent"
	"github.com/jeranaias/agentline-tui/internal/config"
	"github.com/jeranaias/agentline-tui/internal/protocol"
	"github.com/jeranaias/agentline-tui/internal/session"
	"github.com/jeranaias/agentline-tui/internal/turn"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	client := agent.NewClient(agent.DefaultConfig(), session.NewManager())
	m := New(styles.NewTheme(), config.Default(), client)
	m.handleResize(100, 30)
	return m
}

func typeAndSubmit(m Model, text string) (Model, tea.Cmd) {
	m.input.SetValue(text)
	return m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestSubmitInputStartsTurn(t *testing.T) {
	m := newTestModel(t)

	m, cmd := typeAndSubmit(m, "hello agent")
	if cmd == nil {
		t.Fatal("submit should return commands")
	}
	if m.State() != StateStreaming {
		t.Errorf("state = %v, want streaming", m.State())
	}
	if m.Conversation().Len() != 2 {
		t.Fatalf("conversation length = %d, want user + assistant", m.Conversation().Len())
	}
	if m.input.Value() != "" {
		t.Error("input should clear on submit")
	}
	last := m.Conversation().Last()
	if last.ID != m.streamingMsgID {
		t.Error("streaming message id should point at the assistant tail")
	}
}

func TestSubmitIgnoredWhileStreaming(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "first")

	before := m.Conversation().Len()
	m, _ = typeAndSubmit(m, "second")
	if m.Conversation().Len() != before {
		t.Error("submitting during a stream should be ignored")
	}
}

func TestEmptySubmitIgnored(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeAndSubmit(m, "   ")
	if cmd != nil || m.Conversation().Len() != 0 {
		t.Error("whitespace-only input should not start a turn")
	}
}

func TestStreamDoneCompleteRecordsCost(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "hello")

	m.stream.Apply(textEvent("answer"))
	m.stream.Apply(&protocol.Event{Type: protocol.EventDone, SessionID: "sess-1", Cost: 0.02})
	snap := m.stream.Finish(nil)

	m, _ = m.handleStreamDone(StreamDoneMsg{MessageID: m.streamingMsgID, Snapshot: snap})

	if m.State() != StateReady {
		t.Errorf("state = %v, want ready", m.State())
	}
	status := m.sessions.GetStatus()
	if status.SessionID != "sess-1" {
		t.Errorf("session id = %q", status.SessionID)
	}
	if status.Turns != 1 || status.TotalCost != 0.02 {
		t.Errorf("turns=%d cost=%v", status.Turns, status.TotalCost)
	}
	if m.Conversation().Last().Content != "answer" {
		t.Errorf("assistant content = %q", m.Conversation().Last().Content)
	}
}

func TestStreamDoneAwaitingOpensForm(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "do something")

	questions := json.RawMessage(`[{"question":"Proceed?","options":[{"label":"yes"},{"label":"no"}]}]`)
	m.stream.Apply(&protocol.Event{
		Type:      protocol.EventUserInputRequired,
		ToolID:    "ask-1",
		ToolName:  "AskUserQuestion",
		Questions: questions,
	})
	snap := m.stream.Finish(nil)
	if snap.Status != turn.StatusAwaitingInput {
		t.Fatalf("snapshot status = %v", snap.Status)
	}

	m, _ = m.handleStreamDone(StreamDoneMsg{MessageID: m.streamingMsgID, Snapshot: snap})

	if m.State() != StateAwaitingInput {
		t.Errorf("state = %v, want awaiting input", m.State())
	}
	if m.form == nil {
		t.Fatal("question form should open")
	}

	// Answering resumes the turn.
	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter}) // select "yes"
	if m.State() != StateStreaming {
		t.Errorf("state after answering = %v, want streaming", m.State())
	}
	if cmd == nil {
		t.Error("answer submit should return the respond command")
	}
	if m.form != nil {
		t.Error("form should close after submit")
	}
}

func TestEscAbandonsPausedTurn(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "do something")

	questions := json.RawMessage(`[{"question":"Proceed?","options":[{"label":"yes"}]}]`)
	m.stream.Apply(&protocol.Event{
		Type:      protocol.EventUserInputRequired,
		ToolID:    "ask-2",
		ToolName:  "AskUserQuestion",
		Questions: questions,
	})
	snap := m.stream.Finish(nil)
	m, _ = m.handleStreamDone(StreamDoneMsg{MessageID: m.streamingMsgID, Snapshot: snap})

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.State() != StateReady {
		t.Errorf("state = %v, want ready after abandoning", m.State())
	}
	if got := m.Conversation().Last().Status; got != turn.StatusCancelled {
		t.Errorf("message status = %v, want cancelled", got)
	}
}

func TestStaleStreamDoneIgnored(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "hello")

	stale := StreamDoneMsg{MessageID: "gone", Snapshot: turn.Snapshot{Status: turn.StatusComplete}}
	m, _ = m.handleStreamDone(stale) // id from a superseded turn never matches

	if m.State() != StateStreaming {
		t.Error("stale completion must not end the live turn")
	}
}

func TestStreamTickAppliesSnapshot(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "hello")

	m.stream.Apply(textEvent("partial"))
	m, cmd := m.handleStreamTick()

	if m.Conversation().Last().Content != "partial" {
		t.Errorf("tick should fold text into the message, got %q", m.Conversation().Last().Content)
	}
	if cmd == nil {
		t.Error("tick should reschedule while streaming")
	}
}

func TestNewSessionClearsConversation(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeAndSubmit(m, "remember this")
	m, _ = m.handleStreamDone(StreamDoneMsg{
		MessageID: m.streamingMsgID,
		Snapshot:  turn.Snapshot{Text: "noted", Status: turn.StatusComplete},
	})

	m, _ = m.startNewSession()

	if m.Conversation().Len() != 1 {
		t.Errorf("conversation should hold only the new-session notice, len = %d", m.Conversation().Len())
	}
	if m.Conversation().TotalCost != 0 {
		t.Errorf("cost should reset with the session, got %v", m.Conversation().TotalCost)
	}
}
