// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/agentline-tui/internal/turn"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the conversation view. Assistant
// messages are live while their turn streams: each accumulator
// snapshot replaces Content and ToolCalls wholesale until the turn
// reaches a terminal status, at which point the final merged view is
// retained as history.
type Message struct {
	ID        string
	Role      Role
	Timestamp time.Time

	// Content is the running text block.
	Content string

	// ToolCalls is the current snapshot of the turn's tool calls in
	// first-seen order. Retained after the turn completes.
	ToolCalls []turn.ToolCall

	// Status tracks the owning turn's state for assistant messages.
	Status turn.Status

	// ErrText carries the error message when Status is StatusError.
	ErrText string

	// Cost in USD reported by the done event, assistant messages only.
	Cost float64
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message that will be filled
// in by streaming snapshots.
func NewAssistantMessage() *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Status:    turn.StatusStreaming,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// ApplySnapshot replaces the live content of an assistant message with
// the latest turn snapshot.
func (m *Message) ApplySnapshot(snap turn.Snapshot) {
	m.Content = snap.Text
	m.ToolCalls = snap.ToolCalls
	m.Status = snap.Status
	m.ErrText = snap.ErrText
	m.Cost = snap.Cost
}

// Streaming reports whether the message's turn is still in flight.
func (m *Message) Streaming() bool {
	return m.Role == RoleAssistant && !m.Status.Terminal() && m.Status != turn.StatusIdle
}

// Empty reports whether the message has nothing to render.
func (m *Message) Empty() bool {
	return m.Content == "" && len(m.ToolCalls) == 0 && m.ErrText == ""
}
