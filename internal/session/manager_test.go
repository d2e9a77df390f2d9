// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the server-issued session identity across
// turns.
package session

import (
	"testing"
)

// =============================================================================
// MANAGER TESTS
// =============================================================================

func TestManagerStartsEmpty(t *testing.T) {
	m := NewManager()

	if m.Has() {
		t.Error("New manager must not hold a session")
	}
	if id := m.Attach(); id != "" {
		t.Errorf("Attach before first turn must be empty, got %q", id)
	}
}

func TestManagerObserveAdopts(t *testing.T) {
	m := NewManager()

	m.Observe("abc")
	if id := m.Attach(); id != "abc" {
		t.Errorf("Expected adopted id abc, got %q", id)
	}

	// A different server-issued id replaces the old one.
	m.Observe("def")
	if id := m.Attach(); id != "def" {
		t.Errorf("Expected replacement id def, got %q", id)
	}
}

func TestManagerObserveIgnoresEmpty(t *testing.T) {
	m := NewManager()
	m.Observe("abc")
	m.Observe("")

	if id := m.Attach(); id != "abc" {
		t.Errorf("Empty observe must not clear the id, got %q", id)
	}
}

func TestManagerInvalidate(t *testing.T) {
	m := NewManager()
	m.Observe("abc")
	m.RecordTurn(0.01)

	m.Invalidate()

	if m.Has() {
		t.Error("Invalidate must clear the session")
	}
	if st := m.GetStatus(); st.Turns != 0 || st.TotalCost != 0 {
		t.Errorf("Invalidate must reset statistics, got %+v", st)
	}
}

func TestManagerAttachReadsLatest(t *testing.T) {
	m := NewManager()

	// Simulates the stale-capture bug: the id must be read at send
	// time, not captured at an earlier render.
	stale := m.Attach()
	m.Observe("fresh")

	if stale == m.Attach() {
		t.Error("Expected Attach to see the newly observed id")
	}
	if m.Attach() != "fresh" {
		t.Errorf("Attach = %q, want fresh", m.Attach())
	}
}

func TestManagerRecordTurnAccumulates(t *testing.T) {
	m := NewManager()
	m.Observe("abc")

	m.RecordTurn(0.01)
	m.RecordTurn(0.02)

	st := m.GetStatus()
	if st.Turns != 2 {
		t.Errorf("Expected 2 turns, got %d", st.Turns)
	}
	if st.TotalCost < 0.029 || st.TotalCost > 0.031 {
		t.Errorf("Expected cumulative cost ~0.03, got %f", st.TotalCost)
	}
}

func TestManagerReset(t *testing.T) {
	m := NewManager()
	m.Observe("abc")

	old := m.Reset()
	if old != "abc" {
		t.Errorf("Reset must return the old id for backend cleanup, got %q", old)
	}
	if m.Has() {
		t.Error("Reset must clear the session")
	}
}
