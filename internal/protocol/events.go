// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the streaming wire protocol spoken by the
// agent backend.
package protocol

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType discriminates the records arriving on the stream.
type EventType string

const (
	// EventText delivers an incremental text delta.
	EventText EventType = "text"

	// EventToolStart announces a tool invocation with its input.
	EventToolStart EventType = "tool_start"

	// EventToolResult delivers the result for an earlier tool_start.
	EventToolResult EventType = "tool_result"

	// EventUserInputRequired asks the user to answer one or more
	// questions before the turn can continue.
	EventUserInputRequired EventType = "user_input_required"

	// EventDone terminates a successful turn and carries the session id.
	EventDone EventType = "done"

	// EventError terminates a failed turn with a message.
	EventError EventType = "error"

	// EventUnknown is the fallback for tags this client does not know.
	// Consumers must skip these without failing the stream.
	EventUnknown EventType = ""
)

// AskUserQuestionTool is the reserved tool name the backend uses for
// interactive questions. A tool_start with this name is equivalent to a
// user_input_required event.
const AskUserQuestionTool = "AskUserQuestion"

// =============================================================================
// EVENT RECORD
// =============================================================================

// Event is one decoded stream record. Exactly one type tag is
// authoritative per record; the remaining fields are populated only
// when the type calls for them.
type Event struct {
	Type EventType `json:"type"`

	// Text delta (type=text), or error message (type=error).
	Text string `json:"text,omitempty"`

	// Tool call fields (type=tool_start / tool_result).
	ToolID    string          `json:"tool_id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`

	// Result payload. The backend emits either "content" or
	// "tool_result" depending on version; Result() merges them.
	Content    json.RawMessage `json:"content,omitempty"`
	ToolResult json.RawMessage `json:"tool_result,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`

	// Session identity (type=done, may also appear on other events).
	SessionID string  `json:"session_id,omitempty"`
	Cost      float64 `json:"cost,omitempty"`

	// Interactive questions (type=user_input_required). May instead be
	// embedded in ToolInput; see prompt.ExtractQuestions.
	Questions json.RawMessage `json:"questions,omitempty"`

	// Error message (type=error). The backend emits either "error" or
	// "text"; Message() merges them.
	Error string `json:"error,omitempty"`
}

// Result returns the tool result payload, preferring "content" over
// the legacy "tool_result" field.
func (e *Event) Result() json.RawMessage {
	if len(e.Content) > 0 {
		return e.Content
	}
	return e.ToolResult
}

// Message returns the human-readable error message for error events.
func (e *Event) Message() string {
	if e.Error != "" {
		return e.Error
	}
	if e.Text != "" {
		return e.Text
	}
	return "unknown error"
}

// IsAskUserQuestion reports whether this event requests interactive
// user input, either via the dedicated event type or via the reserved
// tool name.
func (e *Event) IsAskUserQuestion() bool {
	return e.Type == EventUserInputRequired || e.ToolName == AskUserQuestionTool
}

// IsSessionExpired reports whether an error event indicates that the
// server no longer holds our session. The trigger phrases are an
// external contract with the agent backend.
func (e *Event) IsSessionExpired() bool {
	if e.Type != EventError {
		return false
	}
	msg := strings.ToLower(e.Message())
	return strings.Contains(msg, "session not found") || strings.Contains(msg, "expired")
}

// Known reports whether the event carries a tag this client handles.
func (e *Event) Known() bool {
	switch e.Type {
	case EventText, EventToolStart, EventToolResult,
		EventUserInputRequired, EventDone, EventError:
		return true
	}
	return false
}
