// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the server-issued session identity across
// turns.
//
// The agent backend holds conversational context keyed by an opaque
// session id. The id arrives on the done event of the first completed
// turn (or via the x-session-id response header before any body bytes)
// and must be attached to every subsequent outgoing request. An error
// event whose text indicates session loss clears the id so the next
// turn starts fresh instead of repeating the same failure.
//
// # Key Types
//
//   - Manager: session identity holder with turn statistics
//   - Status: point-in-time view for the status bar
//
// # Usage
//
//	mgr := session.NewManager()
//	req := agent.ChatRequest{Message: text, SessionID: mgr.Attach()}
//	...
//	mgr.Observe(doneEvent.SessionID)
//
// Only one turn is in flight at a time, so the manager needs nothing
// beyond a mutex; the important rule is that callers read the id at
// send time rather than capturing it at an earlier render.
package session
