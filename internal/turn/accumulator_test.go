// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn folds the event stream for one request/response turn
// into rendering-ready content.
package turn

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jeranaias/agentline-tui/internal/protocol"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeSessions records observer calls.
type fakeSessions struct {
	observed    []string
	invalidated int
}

func (f *fakeSessions) Observe(id string) { f.observed = append(f.observed, id) }
func (f *fakeSessions) Invalidate()       { f.invalidated++ }

func textEvent(s string) *protocol.Event {
	return &protocol.Event{Type: protocol.EventText, Text: s}
}

// =============================================================================
// ACCUMULATOR TESTS
// =============================================================================

func TestAccumulatorTextConcatenation(t *testing.T) {
	a := NewAccumulator(nil)

	deltas := []string{"The ", "quick ", "brown ", "fox"}
	var last Snapshot
	for _, d := range deltas {
		last = a.Apply(textEvent(d))
	}

	if last.Text != "The quick brown fox" {
		t.Errorf("Rendered text must equal concatenation in arrival order, got %q", last.Text)
	}
	if last.Status != StatusStreaming {
		t.Errorf("Expected streaming status, got %v", last.Status)
	}
}

func TestAccumulatorToolLifecycle(t *testing.T) {
	a := NewAccumulator(nil)

	a.Apply(textEvent("Let me check. "))
	snap := a.Apply(&protocol.Event{
		Type:      protocol.EventToolStart,
		ToolID:    "t1",
		ToolName:  "Read",
		ToolInput: json.RawMessage(`{"path":"go.mod"}`),
	})

	if len(snap.ToolCalls) != 1 || snap.ToolCalls[0].Pending() != true {
		t.Fatalf("Expected one pending tool call, got %+v", snap.ToolCalls)
	}

	snap = a.Apply(&protocol.Event{
		Type:    protocol.EventToolResult,
		ToolID:  "t1",
		Content: json.RawMessage(`"module agentline"`),
	})

	if len(snap.ToolCalls) != 1 {
		t.Fatalf("tool_result must not create a duplicate entry, got %d", len(snap.ToolCalls))
	}
	tc := snap.ToolCalls[0]
	if tc.Pending() || tc.Result != "module agentline" || tc.IsError {
		t.Errorf("Result not merged: %+v", tc)
	}
	if snap.Text != "Let me check. " {
		t.Errorf("Text block must survive tool events, got %q", snap.Text)
	}
}

func TestAccumulatorOrphanResultNotRendered(t *testing.T) {
	a := NewAccumulator(nil)

	snap := a.Apply(&protocol.Event{
		Type:    protocol.EventToolResult,
		ToolID:  "never-started",
		Content: json.RawMessage(`"x"`),
	})

	if len(snap.ToolCalls) != 0 {
		t.Errorf("Orphan result must not be renderable, got %+v", snap.ToolCalls)
	}
	if snap.Status.Terminal() {
		t.Errorf("Orphan must not fail the turn, got %v", snap.Status)
	}
}

func TestAccumulatorDone(t *testing.T) {
	sessions := &fakeSessions{}
	a := NewAccumulator(sessions)

	a.Apply(textEvent("hi"))
	snap := a.Apply(&protocol.Event{
		Type:      protocol.EventDone,
		SessionID: "abc",
		Cost:      0.0042,
	})

	if snap.Status != StatusComplete {
		t.Errorf("Expected complete, got %v", snap.Status)
	}
	if snap.SessionID != "abc" || snap.Cost != 0.0042 {
		t.Errorf("Session metadata missing: %+v", snap)
	}
	if len(sessions.observed) != 1 || sessions.observed[0] != "abc" {
		t.Errorf("done must hand the session id to the observer, got %v", sessions.observed)
	}
}

func TestAccumulatorErrorPropagates(t *testing.T) {
	sessions := &fakeSessions{}
	a := NewAccumulator(sessions)

	snap := a.Apply(&protocol.Event{Type: protocol.EventError, Error: "backend exploded"})

	if snap.Status != StatusError || snap.ErrText != "backend exploded" {
		t.Errorf("Error must surface as terminal state, got %+v", snap)
	}
	if sessions.invalidated != 0 {
		t.Error("Ordinary errors must not invalidate the session")
	}
}

func TestAccumulatorSessionExpiryInvalidates(t *testing.T) {
	sessions := &fakeSessions{}
	a := NewAccumulator(sessions)

	snap := a.Apply(&protocol.Event{Type: protocol.EventError, Error: "Session not found"})

	if sessions.invalidated != 1 {
		t.Error("Expiry text must invalidate the session")
	}
	// The error still propagates so the UI can inform the user.
	if snap.Status != StatusError {
		t.Errorf("Expiry must still be an error state, got %v", snap.Status)
	}
}

func TestAccumulatorAwaitingInput(t *testing.T) {
	a := NewAccumulator(nil)

	snap := a.Apply(&protocol.Event{
		Type:      protocol.EventUserInputRequired,
		ToolID:    "q1",
		ToolInput: json.RawMessage(`{"questions":[{"question":"Proceed?"}]}`),
	})

	if snap.Status != StatusAwaitingInput {
		t.Fatalf("Expected awaiting input, got %v", snap.Status)
	}

	// Clean EOF while a question is pending leaves the turn paused,
	// not failed: the server stops sending until the answer arrives.
	snap = a.Finish(nil)
	if snap.Status != StatusAwaitingInput {
		t.Errorf("EOF must not auto-finalize a paused turn, got %v", snap.Status)
	}
}

func TestAccumulatorAskUserQuestionByToolName(t *testing.T) {
	a := NewAccumulator(nil)

	snap := a.Apply(&protocol.Event{
		Type:     protocol.EventToolStart,
		ToolID:   "q1",
		ToolName: protocol.AskUserQuestionTool,
	})

	if snap.Status != StatusAwaitingInput {
		t.Errorf("AskUserQuestion tool_start must pause the turn, got %v", snap.Status)
	}
	if len(snap.ToolCalls) != 1 || !snap.ToolCalls[0].AwaitingInput {
		t.Errorf("Ledger entry must stay pending, got %+v", snap.ToolCalls)
	}
}

func TestAccumulatorCancellationPreservesPartialState(t *testing.T) {
	a := NewAccumulator(nil)

	// 2 of 5 expected deltas arrive, then the user cancels.
	a.Apply(textEvent("one "))
	a.Apply(textEvent("two "))

	snap := a.Finish(context.Canceled)

	if snap.Status != StatusCancelled {
		t.Fatalf("Expected cancelled, got %v", snap.Status)
	}
	if snap.Text != "one two " {
		t.Errorf("Partial text must be preserved exactly, got %q", snap.Text)
	}
}

func TestAccumulatorFinishTransportError(t *testing.T) {
	a := NewAccumulator(nil)
	a.Apply(textEvent("partial"))

	snap := a.Finish(errors.New("connection reset"))

	if snap.Status != StatusError || snap.ErrText != "connection reset" {
		t.Errorf("Transport failure must surface, got %+v", snap)
	}
}

func TestAccumulatorFinishAfterDoneKeepsComplete(t *testing.T) {
	a := NewAccumulator(nil)
	a.Apply(&protocol.Event{Type: protocol.EventDone, SessionID: "s"})

	snap := a.Finish(nil)
	if snap.Status != StatusComplete {
		t.Errorf("Finish must not override a terminal state, got %v", snap.Status)
	}
}

func TestAccumulatorUnknownEventIgnored(t *testing.T) {
	a := NewAccumulator(nil)
	a.Apply(textEvent("keep"))

	snap := a.Apply(&protocol.Event{Type: "future_thing", Text: "ignored"})

	if snap.Text != "keep" {
		t.Errorf("Unknown events must not disturb state, got %q", snap.Text)
	}
	if snap.Status != StatusStreaming {
		t.Errorf("Unknown events must not change status, got %v", snap.Status)
	}
}

func TestAccumulatorResumeAfterAnswer(t *testing.T) {
	a := NewAccumulator(nil)

	a.Apply(&protocol.Event{
		Type:   protocol.EventUserInputRequired,
		ToolID: "q1",
	})
	snap := a.Apply(&protocol.Event{
		Type:    protocol.EventToolResult,
		ToolID:  "q1",
		Content: json.RawMessage(`"{\"Proceed?\":\"Yes\"}"`),
	})

	if snap.Status != StatusStreaming {
		t.Errorf("Answering the question must resume streaming, got %v", snap.Status)
	}
}
