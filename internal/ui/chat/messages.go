// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
//
// This file defines the Bubble Tea message types used by the chat view:
// stream lifecycle, frame ticks, backend health, prompt answering, and
// session management. All message types are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/agentline-tui/internal/turn"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a turn began streaming.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// StreamTickMsg drives frame-rate polling of the stream handle while a
// turn is in flight.
type StreamTickMsg struct {
	Time time.Time
}

// StreamDoneMsg signals that the streaming call returned. Snapshot is
// the turn's final state; Err is the transport error, if any. A turn
// paused on a question also ends its HTTP stream with this message, with
// the snapshot still in the awaiting-input state.
type StreamDoneMsg struct {
	MessageID string
	Snapshot  turn.Snapshot
	Err       error
}

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// BackendStatusMsg reports the backend health probe result.
type BackendStatusMsg struct {
	Running bool
	Err     error
}

// SessionClearedMsg reports the outcome of discarding the server-side
// session for a new conversation.
type SessionClearedMsg struct {
	OldID string
	Err   error
}

// =============================================================================
// PROMPT MESSAGES
// =============================================================================

// AnswerRejectedMsg signals that submitting a question form's answers
// failed before the respond call went out.
type AnswerRejectedMsg struct {
	Err error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// statusNoteExpiredMsg clears a transient status note.
type statusNoteExpiredMsg struct{}
