// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the streaming agent
// backend.
//
// One chat turn is one POST to the chat endpoint with
// {message, session_id}; the response body is a stream of framed
// events (see internal/protocol) that ends with a [DONE] sentinel.
// Answers to interactive questions go to the respond endpoint with
// {session_id, response}, falling back to the chat endpoint shape when
// the backend does not implement the dedicated route.
//
// # Key Types
//
//   - Client: backend HTTP client with one in-flight turn at a time
//   - ClientError: error taxonomy for connection/status/decode failures
//
// # Usage
//
//	client := agent.NewClient(agent.DefaultConfig(), sessions)
//	err := client.Send(ctx, "hello", func(ev *protocol.Event) {
//	    ...
//	})
//
// Cancellation is cooperative: cancel the context and the read loop
// stops cleanly, returning context.Canceled so the caller can finalize
// partial state instead of discarding it.
package agent
