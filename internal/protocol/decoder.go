// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the streaming wire protocol spoken by the
// agent backend.
package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/jeranaias/agentline-tui/internal/debuglog"
)

// =============================================================================
// STREAM FRAMING
// =============================================================================

const (
	// dataPrefix marks a payload line in the SSE-style framing.
	dataPrefix = "data: "

	// doneSentinel is the literal end-of-stream marker.
	doneSentinel = "[DONE]"
)

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads framed events from a byte stream one at a time.
// It is restartable only by reopening the underlying connection; the
// stream is not seekable. Not safe for concurrent use — exactly one
// read loop owns a Decoder for the duration of a turn.
type Decoder struct {
	reader *bufio.Reader

	// carry holds a partial line when a network chunk ends mid-record.
	carry []byte

	skipped int
	done    bool
}

// NewDecoder creates a decoder over the response body of a streaming
// request.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		reader: bufio.NewReader(r),
	}
}

// Next returns the next event on the stream.
//
// It returns io.EOF when the stream ends, either via the [DONE]
// sentinel or because the underlying reader is exhausted. Malformed
// JSON on a single line is counted, logged, and skipped — it never
// terminates the stream. Any other read failure is fatal and
// propagates to the caller.
func (d *Decoder) Next() (*Event, error) {
	if d.done {
		return nil, io.EOF
	}

	for {
		line, err := d.readLine()
		if err != nil {
			d.done = true
			return nil, err
		}
		if line == nil {
			// Blank separator line between records.
			continue
		}

		payload, ok := bytes.CutPrefix(line, []byte(dataPrefix))
		if !ok {
			// Not a data line; comments and other SSE fields are ignored.
			continue
		}

		if string(bytes.TrimSpace(payload)) == doneSentinel {
			d.done = true
			return nil, io.EOF
		}

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			d.skipped++
			debuglog.Printf("protocol: skipping malformed event line (%d so far): %v", d.skipped, err)
			continue
		}

		return &ev, nil
	}
}

// readLine returns the next complete line without its trailing newline,
// carrying partial reads across chunk boundaries. Returns nil (no
// error) for empty lines.
func (d *Decoder) readLine() ([]byte, error) {
	for {
		chunk, err := d.reader.ReadBytes('\n')
		if len(chunk) > 0 {
			d.carry = append(d.carry, chunk...)
		}
		if err != nil {
			// A final line without a newline is still processed.
			if err == io.EOF && len(bytes.TrimSpace(d.carry)) > 0 {
				line := d.carry
				d.carry = nil
				return bytes.TrimRight(line, "\r\n"), nil
			}
			return nil, err
		}

		if d.carry[len(d.carry)-1] == '\n' {
			line := bytes.TrimRight(d.carry, "\r\n")
			d.carry = nil
			if len(line) == 0 {
				return nil, nil
			}
			return line, nil
		}
	}
}

// Skipped returns how many malformed lines were dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// =============================================================================
// CONVENIENCE
// =============================================================================

// EventCallback is called for each decoded event during DecodeAll.
type EventCallback func(ev *Event)

// DecodeAll drains the stream, invoking the callback for every event
// in arrival order. Returns nil on clean end of stream.
func DecodeAll(r io.Reader, callback EventCallback) error {
	dec := NewDecoder(r)
	for {
		ev, err := dec.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		callback(ev)
	}
}
