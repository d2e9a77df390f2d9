// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
//
// This file implements thread-safe cancel function handling. The cancel
// function for the in-flight turn is set from the Update loop and may
// fire from key handling while the streaming goroutine is mid-request.
package chat

import (
	"context"
	"sync"
)

// cancelManager guards the current turn's context cancel function.
// IMPORTANT: use as a pointer (*cancelManager) in the Model so Bubble
// Tea's model copies never copy the mutex.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores the cancel function for a new turn, cancelling any
// previous one first so stale contexts cannot leak.
func (cm *cancelManager) set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = fn
}

// cancel invokes and clears the stored cancel function. Safe to call
// repeatedly or with nothing stored.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}
