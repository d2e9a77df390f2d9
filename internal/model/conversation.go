// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// messages.
package model

import (
	"time"
)

// MaxMessages caps the in-memory history. When exceeded, old messages
// are pruned to prevent unbounded growth in long sessions.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the in-process chat history and metadata.
type Conversation struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []*Message

	// TotalCost is the cumulative reported cost in USD.
	TotalCost float64
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.pruneOldMessages()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends a live assistant message.
func (c *Conversation) AddAssistantMessage() *Message {
	msg := NewAssistantMessage()
	c.AddMessage(msg)
	return msg
}

// AddSystemMessage creates and appends a system message.
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	c.AddMessage(msg)
	return msg
}

// Last returns the most recent message, or nil when empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Clear drops all messages, keeping the conversation value.
func (c *Conversation) Clear() {
	c.Messages = c.Messages[:0]
	c.TotalCost = 0
	c.UpdatedAt = time.Now()
}

// RecordCost accumulates a turn's reported cost.
func (c *Conversation) RecordCost(cost float64) {
	c.TotalCost += cost
}

// pruneOldMessages trims history beyond MaxMessages, oldest first.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	excess := len(c.Messages) - MaxMessages
	c.Messages = append(c.Messages[:0:0], c.Messages[excess:]...)
}
