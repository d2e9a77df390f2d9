// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt bridges the agent's interactive questions to the UI.
package prompt

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/jeranaias/agentline-tui/internal/protocol"
)

// =============================================================================
// QUESTION TYPES
// =============================================================================

// Option is one selectable answer for a question.
type Option struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Question is a single question inside an AskUserQuestion call.
type Question struct {
	Question    string   `json:"question"`
	Header      string   `json:"header,omitempty"`
	Options     []Option `json:"options,omitempty"`
	MultiSelect bool     `json:"multiSelect,omitempty"`
}

// =============================================================================
// PROMPT INSTANCE
// =============================================================================

// ErrAlreadySubmitted is returned when answers are submitted twice for
// the same prompt instance.
var ErrAlreadySubmitted = errors.New("prompt already answered")

// Prompt is one pending AskUserQuestion instance: the tool id it must
// answer, the questions to show, and the answered-once guard.
type Prompt struct {
	ToolID    string
	Questions []Question

	submitted bool
}

// Submitted reports whether answers were already posted. The UI keys
// read-only rendering off this flag.
func (p *Prompt) Submitted() bool {
	return p.submitted
}

// Answer serializes the collected answers and marks the prompt as
// submitted. answers is indexed like Questions; multi-select answers
// hold the chosen labels. Returns the tool-result string to post.
//
// The flag flips before any I/O happens, so even if the same tool id
// shows up again the instance refuses a second submit.
func (p *Prompt) Answer(answers []Answer) (string, error) {
	if p.submitted {
		return "", ErrAlreadySubmitted
	}
	if len(answers) != len(p.Questions) {
		return "", errors.New("answer count does not match question count")
	}
	p.submitted = true

	return SerializeAnswers(p.Questions, answers)
}

// Answer holds the user's selection for one question.
type Answer struct {
	// Labels are the selected option labels (one for single-select).
	Labels []string

	// Text is a free-form answer when the question has no options.
	Text string
}

// Value renders the answer as the single string the backend expects.
func (a Answer) Value() string {
	if len(a.Labels) > 0 {
		return strings.Join(a.Labels, ", ")
	}
	return a.Text
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract pulls the questions out of a stream event, looking at the
// top-level questions field first and the tool input payload second
// (first non-empty source wins — the backend contract leaves the
// location ambiguous). Returns nil when the event carries no
// questions.
func Extract(ev *protocol.Event) *Prompt {
	if !ev.IsAskUserQuestion() {
		return nil
	}

	qs := parseQuestions(ev.Questions)
	if len(qs) == 0 {
		qs = questionsFromToolInput(ev.ToolInput)
	}
	if len(qs) == 0 {
		return nil
	}

	return &Prompt{ToolID: ev.ToolID, Questions: qs}
}

func parseQuestions(raw json.RawMessage) []Question {
	if len(raw) == 0 {
		return nil
	}
	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil
	}
	return qs
}

func questionsFromToolInput(raw json.RawMessage) []Question {
	if len(raw) == 0 {
		return nil
	}
	var input struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil
	}
	return input.Questions
}

// =============================================================================
// ANSWER SERIALIZATION
// =============================================================================

// SerializeAnswers builds the {questionText: answerText} JSON string
// posted back as the AskUserQuestion tool result.
func SerializeAnswers(questions []Question, answers []Answer) (string, error) {
	if len(questions) != len(answers) {
		return "", errors.New("answer count does not match question count")
	}

	m := make(map[string]string, len(questions))
	for i, q := range questions {
		m[q.Question] = answers[i].Value()
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// PENDING SET
// =============================================================================

// Set tracks the pending prompt instances of a turn, keyed by tool id.
// Whether the backend ever raises more than one simultaneously is
// unconfirmed, so the structure assumes it can.
type Set struct {
	byID  map[string]*Prompt
	order []string
}

// NewSet creates an empty pending set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*Prompt)}
}

// Add registers a prompt instance. A second prompt for an id that was
// already answered is dropped (defensive against id reuse).
func (s *Set) Add(p *Prompt) {
	if p == nil {
		return
	}
	if existing, ok := s.byID[p.ToolID]; ok && existing.submitted {
		return
	}
	if _, ok := s.byID[p.ToolID]; !ok {
		s.order = append(s.order, p.ToolID)
	}
	s.byID[p.ToolID] = p
}

// Get returns the prompt for a tool id, or nil.
func (s *Set) Get(toolID string) *Prompt {
	return s.byID[toolID]
}

// Pending returns unanswered prompts in arrival order.
func (s *Set) Pending() []*Prompt {
	var out []*Prompt
	for _, id := range s.order {
		if p := s.byID[id]; !p.submitted {
			out = append(out, p)
		}
	}
	return out
}

// Clear drops all instances for a new turn.
func (s *Set) Clear() {
	s.byID = make(map[string]*Prompt)
	s.order = nil
}
