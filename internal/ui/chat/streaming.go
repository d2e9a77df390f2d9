// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
//
// This file implements the stream handle that carries turn state from
// the streaming goroutine to the Update loop. Events are folded into
// the turn accumulator as they arrive; the UI polls the latest snapshot
// at a capped frame rate instead of re-rendering per event, which keeps
// fast streams flicker-free.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentline-tui/internal/prompt"
	"github.com/jeranaias/agentline-tui/internal/protocol"
	"github.com/jeranaias/agentline-tui/internal/turn"
)

// frameInterval caps snapshot polling at ~30fps.
const frameInterval = 33 * time.Millisecond

// =============================================================================
// STREAM HANDLE
// =============================================================================

// streamHandle owns one turn's accumulator and pending prompts. The
// streaming goroutine writes through Apply; the Update loop reads with
// Latest. All access is mutex-guarded because the two run concurrently.
//
// Use as a pointer: Bubble Tea copies models on every Update and the
// mutex must not be copied with them.
type streamHandle struct {
	mu      sync.Mutex
	acc     *turn.Accumulator
	prompts *prompt.Set
	snap    turn.Snapshot
	dirty   bool
}

// newStreamHandle creates a handle for a fresh turn. sessions receives
// session id observations from the event stream.
func newStreamHandle(sessions turn.SessionObserver) *streamHandle {
	acc := turn.NewAccumulator(sessions)
	return &streamHandle{
		acc:     acc,
		prompts: prompt.NewSet(),
		snap:    acc.Snapshot(),
	}
}

// Apply folds one stream event into the turn. Question payloads are
// also captured as pending prompt instances.
func (h *streamHandle) Apply(ev *protocol.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snap = h.acc.Apply(ev)
	h.dirty = true

	if p := prompt.Extract(ev); p != nil {
		h.prompts.Add(p)
	}
}

// Finish closes the turn with the streaming call's error and returns
// the final snapshot.
func (h *streamHandle) Finish(err error) turn.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snap = h.acc.Finish(err)
	h.dirty = true
	return h.snap
}

// Latest returns the newest snapshot and whether it changed since the
// last call. The dirty flag makes frame ticks cheap when the stream is
// quiet.
func (h *streamHandle) Latest() (turn.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := h.dirty
	h.dirty = false
	return h.snap, changed
}

// PendingPrompt returns the oldest unanswered prompt, or nil.
func (h *streamHandle) PendingPrompt() *prompt.Prompt {
	h.mu.Lock()
	defer h.mu.Unlock()

	pending := h.prompts.Pending()
	if len(pending) == 0 {
		return nil
	}
	return pending[0]
}

// =============================================================================
// FRAME TICK
// =============================================================================

// streamTickCmd schedules the next snapshot poll.
func streamTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
