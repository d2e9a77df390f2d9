// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn folds the event stream for one request/response turn
// into rendering-ready content.
package turn

import (
	"encoding/json"
)

// =============================================================================
// TOOL CALL STATE
// =============================================================================

// ToolCall is the accumulated state of one tool invocation during a
// turn. Created on the first tool_start for an id, mutated in place on
// a matching tool_result, never deleted mid-turn.
type ToolCall struct {
	ID   string
	Name string

	// Args is the decoded tool input; ArgsText preserves the raw JSON
	// for display when the input does not decode to an object.
	Args     map[string]any
	ArgsText string

	// Result holds the rendered result payload once complete.
	Result    string
	HasResult bool
	IsError   bool

	// AwaitingInput marks AskUserQuestion calls that are paused until
	// the user answers; completion logic must not treat them as failed.
	AwaitingInput bool
}

// Pending reports whether the call has no result yet.
func (tc *ToolCall) Pending() bool {
	return !tc.HasResult
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger tracks tool calls by id for the duration of one turn.
// Insertion order is preserved and is the tie-break for simultaneous
// calls, matching the order the agent emitted them.
type Ledger struct {
	calls map[string]*ToolCall
	order []string

	// orphans holds results whose tool_start was never seen. They are
	// kept keyed by id (never rendered) so a late tool_start can still
	// pick them up instead of crashing the turn.
	orphans map[string]orphanResult
}

type orphanResult struct {
	result  string
	isError bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		calls:   make(map[string]*ToolCall),
		orphans: make(map[string]orphanResult),
	}
}

// Begin registers a tool call. Idempotent: a duplicate tool_start for
// the same id keeps the first entry's name and args.
func (l *Ledger) Begin(id, name string, argsRaw json.RawMessage) *ToolCall {
	if tc, ok := l.calls[id]; ok {
		return tc
	}

	tc := &ToolCall{ID: id, Name: name}
	if len(argsRaw) > 0 {
		tc.ArgsText = string(argsRaw)
		// Non-object inputs keep only the raw text form.
		_ = json.Unmarshal(argsRaw, &tc.Args)
	}

	// Adopt an earlier orphan result for this id, if any.
	if orphan, ok := l.orphans[id]; ok {
		tc.Result = orphan.result
		tc.IsError = orphan.isError
		tc.HasResult = true
		delete(l.orphans, id)
	}

	l.calls[id] = tc
	l.order = append(l.order, id)
	return tc
}

// Complete records the result for an existing call. A result with no
// matching tool_start is stored keyed by id but never rendered; the
// stream must tolerate the orphan rather than fail.
func (l *Ledger) Complete(id string, result json.RawMessage, isError bool) {
	rendered := renderResult(result)

	tc, ok := l.calls[id]
	if !ok {
		l.orphans[id] = orphanResult{result: rendered, isError: isError}
		return
	}

	tc.Result = rendered
	tc.IsError = isError
	tc.HasResult = true
	tc.AwaitingInput = false
}

// Get returns the call for an id, or nil.
func (l *Ledger) Get(id string) *ToolCall {
	return l.calls[id]
}

// Snapshot returns copies of all started calls in insertion order.
// Orphan results are excluded from rendering.
func (l *Ledger) Snapshot() []ToolCall {
	if len(l.order) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.calls[id])
	}
	return out
}

// Len returns the number of started calls.
func (l *Ledger) Len() int {
	return len(l.order)
}

// AnyAwaitingInput reports whether any call is paused on user input.
func (l *Ledger) AnyAwaitingInput() bool {
	for _, id := range l.order {
		if l.calls[id].AwaitingInput && !l.calls[id].HasResult {
			return true
		}
	}
	return false
}

// =============================================================================
// RESULT RENDERING
// =============================================================================

// renderResult converts a raw result payload to display text. String
// payloads are unquoted; everything else keeps its JSON form.
func renderResult(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
