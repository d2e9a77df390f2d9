// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt bridges the agent's interactive questions to the UI.
package prompt

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jeranaias/agentline-tui/internal/protocol"
)

// =============================================================================
// EXTRACTION TESTS
// =============================================================================

func TestExtractTopLevelQuestions(t *testing.T) {
	ev := &protocol.Event{
		Type:      protocol.EventUserInputRequired,
		ToolID:    "q1",
		Questions: json.RawMessage(`[{"question":"What color?","options":[{"label":"Red"},{"label":"Blue"}]}]`),
	}

	p := Extract(ev)
	if p == nil {
		t.Fatal("Expected a prompt")
	}
	if p.ToolID != "q1" {
		t.Errorf("ToolID = %q, want q1", p.ToolID)
	}
	if len(p.Questions) != 1 || p.Questions[0].Question != "What color?" {
		t.Fatalf("Bad questions: %+v", p.Questions)
	}
	if len(p.Questions[0].Options) != 2 || p.Questions[0].Options[1].Label != "Blue" {
		t.Errorf("Bad options: %+v", p.Questions[0].Options)
	}
}

func TestExtractFromToolInput(t *testing.T) {
	// The backend sometimes nests questions inside the tool input.
	ev := &protocol.Event{
		Type:      protocol.EventToolStart,
		ToolID:    "q2",
		ToolName:  protocol.AskUserQuestionTool,
		ToolInput: json.RawMessage(`{"questions":[{"question":"Proceed?","multiSelect":false}]}`),
	}

	p := Extract(ev)
	if p == nil {
		t.Fatal("Expected a prompt from tool input")
	}
	if p.Questions[0].Question != "Proceed?" {
		t.Errorf("Bad question: %+v", p.Questions[0])
	}
}

func TestExtractTopLevelWins(t *testing.T) {
	ev := &protocol.Event{
		Type:      protocol.EventUserInputRequired,
		ToolID:    "q3",
		Questions: json.RawMessage(`[{"question":"top"}]`),
		ToolInput: json.RawMessage(`{"questions":[{"question":"nested"}]}`),
	}

	p := Extract(ev)
	if p == nil || p.Questions[0].Question != "top" {
		t.Fatalf("First non-empty source must win, got %+v", p)
	}
}

func TestExtractNonQuestionEvent(t *testing.T) {
	ev := &protocol.Event{Type: protocol.EventToolStart, ToolName: "Read"}
	if p := Extract(ev); p != nil {
		t.Errorf("Ordinary tool must not produce a prompt, got %+v", p)
	}
}

func TestExtractEmptyQuestions(t *testing.T) {
	ev := &protocol.Event{
		Type:      protocol.EventUserInputRequired,
		Questions: json.RawMessage(`[]`),
	}
	if p := Extract(ev); p != nil {
		t.Errorf("Empty question list must not produce a prompt, got %+v", p)
	}
}

// =============================================================================
// ANSWER TESTS
// =============================================================================

func TestAnswerSerialization(t *testing.T) {
	p := &Prompt{
		ToolID: "q1",
		Questions: []Question{
			{Question: "What color?"},
			{Question: "Which sizes?", MultiSelect: true},
		},
	}

	result, err := p.Answer([]Answer{
		{Labels: []string{"Red"}},
		{Labels: []string{"S", "M"}},
	})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(result), &m); err != nil {
		t.Fatalf("Result is not a JSON object: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("Expected both question texts as keys, got %v", m)
	}
	if m["What color?"] != "Red" {
		t.Errorf("Single select = %q, want Red", m["What color?"])
	}
	if m["Which sizes?"] != "S, M" {
		t.Errorf("Multi select = %q, want joined labels", m["Which sizes?"])
	}
}

func TestAnswerExactlyOnce(t *testing.T) {
	p := &Prompt{ToolID: "q1", Questions: []Question{{Question: "Q"}}}

	if _, err := p.Answer([]Answer{{Text: "first"}}); err != nil {
		t.Fatalf("First answer failed: %v", err)
	}
	if !p.Submitted() {
		t.Error("Prompt must be marked submitted")
	}

	_, err := p.Answer([]Answer{{Text: "second"}})
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("Second submit must be refused, got %v", err)
	}
}

func TestAnswerCountMismatch(t *testing.T) {
	p := &Prompt{ToolID: "q1", Questions: []Question{{Question: "A"}, {Question: "B"}}}

	if _, err := p.Answer([]Answer{{Text: "only one"}}); err == nil {
		t.Error("Mismatched answer count must fail")
	}
	if p.Submitted() {
		t.Error("Failed validation must not consume the single submit")
	}
}

func TestAnswerFreeText(t *testing.T) {
	a := Answer{Text: "something else"}
	if a.Value() != "something else" {
		t.Errorf("Value() = %q", a.Value())
	}

	a = Answer{Labels: []string{"A"}, Text: "ignored"}
	if a.Value() != "A" {
		t.Errorf("Labels must win over free text, got %q", a.Value())
	}
}

// =============================================================================
// PENDING SET TESTS
// =============================================================================

func TestSetTracksMultiplePending(t *testing.T) {
	s := NewSet()
	s.Add(&Prompt{ToolID: "q1", Questions: []Question{{Question: "A"}}})
	s.Add(&Prompt{ToolID: "q2", Questions: []Question{{Question: "B"}}})

	pending := s.Pending()
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending prompts, got %d", len(pending))
	}
	if pending[0].ToolID != "q1" || pending[1].ToolID != "q2" {
		t.Errorf("Pending order wrong: %+v", pending)
	}
}

func TestSetAnsweredDropsFromPending(t *testing.T) {
	s := NewSet()
	p := &Prompt{ToolID: "q1", Questions: []Question{{Question: "A"}}}
	s.Add(p)

	if _, err := p.Answer([]Answer{{Text: "done"}}); err != nil {
		t.Fatal(err)
	}

	if len(s.Pending()) != 0 {
		t.Error("Answered prompt must leave the pending list")
	}
}

func TestSetRefusesReuseAfterSubmit(t *testing.T) {
	s := NewSet()
	p := &Prompt{ToolID: "q1", Questions: []Question{{Question: "A"}}}
	s.Add(p)
	if _, err := p.Answer([]Answer{{Text: "x"}}); err != nil {
		t.Fatal(err)
	}

	// Backend reuses the id: the answered instance must stand.
	s.Add(&Prompt{ToolID: "q1", Questions: []Question{{Question: "A again"}}})

	if got := s.Get("q1"); !got.Submitted() {
		t.Error("Submitted instance must not be replaced by id reuse")
	}
}
