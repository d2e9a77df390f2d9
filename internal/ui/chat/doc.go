// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the agentline TUI.
//
// The view is a Bubble Tea model wrapping one conversation with the
// backend agent. A turn starts when the user submits a line: the agent
// client streams events on a goroutine into a shared stream handle, and
// the Update loop polls the handle on a frame tick, re-rendering the
// in-flight assistant message from turn snapshots. When the agent asks
// a question mid-turn, the view suspends the input area and shows a
// question form; submitting the form resumes the very same turn through
// the respond endpoint.
//
// Escape cancels the in-flight turn. Partial output stays in the
// transcript, marked cancelled.
package chat
