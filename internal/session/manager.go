// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the server-issued session identity across
// turns.
package session

import (
	"sync"
	"time"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager holds the current session identity and per-session
// statistics. The id is empty before the first completed turn and
// after invalidation.
type Manager struct {
	mu sync.Mutex

	sessionID string
	startTime time.Time

	// Turn statistics for the status bar.
	turns     int
	totalCost float64
	lastTurn  time.Time
}

// NewManager creates a manager with no session.
func NewManager() *Manager {
	return &Manager{
		startTime: time.Now(),
	}
}

// =============================================================================
// IDENTITY
// =============================================================================

// Attach returns the session id to place on an outgoing request, or ""
// when no session exists yet. Always call this at send time; the
// server may have issued or invalidated an id since the last render.
func (m *Manager) Attach() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Has reports whether a session id is currently held.
func (m *Manager) Has() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID != ""
}

// Observe adopts a server-issued session id: when none is set, or when
// the server issues a different one. Empty ids are ignored.
func (m *Manager) Observe(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionID != id {
		m.sessionID = id
		m.startTime = time.Now()
	}
}

// Invalidate clears the session id. Called when an error event's text
// indicates the session is unknown or expired; the next turn then
// starts fresh instead of repeating the same failure.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = ""
	m.turns = 0
	m.totalCost = 0
}

// Reset drops the session and statistics for an explicit new
// conversation and returns the old id so the caller can ask the
// backend to delete it.
func (m *Manager) Reset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.sessionID
	m.sessionID = ""
	m.turns = 0
	m.totalCost = 0
	m.startTime = time.Now()
	return old
}

// =============================================================================
// TURN STATISTICS
// =============================================================================

// RecordTurn notes a finished turn and its reported cost in USD.
func (m *Manager) RecordTurn(cost float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns++
	m.totalCost += cost
	m.lastTurn = time.Now()
}

// =============================================================================
// STATUS
// =============================================================================

// Status is a point-in-time view of the session for display.
type Status struct {
	SessionID string
	Active    bool
	StartTime time.Time
	Turns     int
	TotalCost float64
	LastTurn  time.Time
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		SessionID: m.sessionID,
		Active:    m.sessionID != "",
		StartTime: m.startTime,
		Turns:     m.turns,
		TotalCost: m.totalCost,
		LastTurn:  m.lastTurn,
	}
}
