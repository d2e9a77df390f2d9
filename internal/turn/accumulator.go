// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn folds the event stream for one request/response turn
// into rendering-ready content.
package turn

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/agentline-tui/internal/protocol"
)

// =============================================================================
// TURN STATUS
// =============================================================================

// Status is the turn state machine.
type Status int

const (
	// StatusIdle means no events have arrived yet.
	StatusIdle Status = iota

	// StatusStreaming means events are being folded in.
	StatusStreaming

	// StatusAwaitingInput means an AskUserQuestion call is pending and
	// the turn is paused until the user answers. Not a terminal state.
	StatusAwaitingInput

	// StatusComplete, StatusError, and StatusCancelled are terminal.
	StatusComplete
	StatusError
	StatusCancelled
)

// String returns the status name for display.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusStreaming:
		return "streaming"
	case StatusAwaitingInput:
		return "awaiting input"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the turn has finished.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the rendering-ready view of a turn: one running text
// block followed by all tool calls in first-seen order. Re-emitted as
// a whole on every event.
type Snapshot struct {
	Text      string
	ToolCalls []ToolCall
	Status    Status

	// ErrText is set when Status is StatusError.
	ErrText string

	// Session metadata from the done event.
	SessionID string
	Cost      float64
}

// =============================================================================
// SESSION OBSERVER
// =============================================================================

// SessionObserver receives session identity changes discovered while
// folding a turn. Satisfied by session.Manager.
type SessionObserver interface {
	// Observe adopts a server-issued session id.
	Observe(id string)

	// Invalidate clears the session after an expiry signal.
	Invalidate()
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator folds the event sequence for one turn. Owned by a single
// read loop; the UI consumes only the snapshots it returns.
type Accumulator struct {
	status  Status
	text    strings.Builder
	ledger  *Ledger
	errText string

	sessionID string
	cost      float64

	sessions SessionObserver
}

// NewAccumulator creates an accumulator for a fresh turn. The observer
// may be nil when session continuity is not wanted (tests).
func NewAccumulator(sessions SessionObserver) *Accumulator {
	return &Accumulator{
		status:   StatusIdle,
		ledger:   NewLedger(),
		sessions: sessions,
	}
}

// Ledger exposes the turn's tool-call ledger.
func (a *Accumulator) Ledger() *Ledger {
	return a.ledger
}

// Status returns the current turn status.
func (a *Accumulator) Status() Status {
	return a.status
}

// Apply folds one event and returns the updated snapshot.
func (a *Accumulator) Apply(ev *protocol.Event) Snapshot {
	if a.status == StatusIdle {
		a.status = StatusStreaming
	}

	switch ev.Type {
	case protocol.EventText:
		// Monotonic append; earlier text is never edited retroactively.
		a.text.WriteString(ev.Text)

	case protocol.EventToolStart:
		tc := a.ledger.Begin(ev.ToolID, ev.ToolName, ev.ToolInput)
		if ev.IsAskUserQuestion() {
			tc.AwaitingInput = true
			a.status = StatusAwaitingInput
		}

	case protocol.EventUserInputRequired:
		tc := a.ledger.Begin(ev.ToolID, protocol.AskUserQuestionTool, ev.ToolInput)
		tc.AwaitingInput = true
		a.status = StatusAwaitingInput

	case protocol.EventToolResult:
		a.ledger.Complete(ev.ToolID, ev.Result(), ev.IsError)
		if a.status == StatusAwaitingInput && !a.ledger.AnyAwaitingInput() {
			a.status = StatusStreaming
		}

	case protocol.EventDone:
		a.finalize(ev)

	case protocol.EventError:
		if ev.IsSessionExpired() && a.sessions != nil {
			// Clear the session so the next turn starts fresh; the
			// error still propagates so the UI can inform the user.
			a.sessions.Invalidate()
		}
		a.status = StatusError
		a.errText = ev.Message()

	default:
		// Unknown event types are ignored without failing the stream.
	}

	if ev.SessionID != "" {
		a.sessionID = ev.SessionID
	}

	return a.Snapshot()
}

// finalize handles the done event: adopt the session id and complete.
func (a *Accumulator) finalize(ev *protocol.Event) {
	if ev.SessionID != "" {
		a.sessionID = ev.SessionID
		if a.sessions != nil {
			a.sessions.Observe(ev.SessionID)
		}
	}
	a.cost = ev.Cost
	a.status = StatusComplete
}

// Finish settles the turn when the read loop exits.
//
// A nil error on a turn that is awaiting user input leaves the turn
// paused — the server legitimately stops sending events until the
// answer arrives. A cancellation error finalizes partial state with
// StatusCancelled rather than discarding it. Any other error is a
// transport failure and surfaces as StatusError.
func (a *Accumulator) Finish(err error) Snapshot {
	switch {
	case err == nil:
		if a.status == StatusAwaitingInput {
			break
		}
		if !a.status.Terminal() {
			a.status = StatusComplete
		}

	case errors.Is(err, context.Canceled):
		a.status = StatusCancelled

	default:
		if !a.status.Terminal() {
			a.status = StatusError
			a.errText = err.Error()
		}
	}

	return a.Snapshot()
}

// Snapshot returns the current rendering-ready view of the turn.
func (a *Accumulator) Snapshot() Snapshot {
	return Snapshot{
		Text:      a.text.String(),
		ToolCalls: a.ledger.Snapshot(),
		Status:    a.status,
		ErrText:   a.errText,
		SessionID: a.sessionID,
		Cost:      a.cost,
	}
}
