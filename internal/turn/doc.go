// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn folds the event stream for one request/response turn
// into rendering-ready content.
//
// A turn is one user message through to a completed, errored, or
// cancelled agent response. Two cooperating pieces live here:
//
//   - Ledger: keyed, insertion-ordered bookkeeping of tool calls,
//     merging tool_start and tool_result events by id
//   - Accumulator: the per-turn state machine that appends text
//     deltas, drives the ledger, and re-emits a full content snapshot
//     on every event
//
// The accumulator re-emits the whole snapshot rather than deltas; at
// chat scale this is a deliberate simplicity tradeoff. Both types are
// owned by a single read loop per turn and are not safe for concurrent
// mutation; the UI only ever consumes committed snapshots.
package turn
