// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the streaming wire protocol spoken by the
// agent backend and the decoder that turns the raw byte stream into
// typed events.
//
// The backend frames each record as an SSE-style line:
//
//	data: {"type":"text","text":"Hello"}
//
// terminated by a literal "data: [DONE]" sentinel. Records carry a
// discriminating "type" tag: text, tool_start, tool_result,
// user_input_required, done, and error. Unknown tags decode to
// EventUnknown and are skipped by consumers rather than failing the
// stream, so new backend event types never break older clients.
//
// # Key Types
//
//   - Event: one decoded record with type-specific fields
//   - EventType: closed set of known discriminator tags
//   - Decoder: incremental line decoder over an io.Reader
//
// # Usage
//
//	dec := protocol.NewDecoder(resp.Body)
//	for {
//	    ev, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// The decoder tolerates arbitrary chunk boundaries: partial lines are
// carried over until the terminating newline arrives. A line that is
// not valid JSON is counted and skipped; losing one event in a long
// turn is recoverable, aborting the turn is not.
package protocol
