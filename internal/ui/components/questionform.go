// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentline-tui/internal/prompt"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
)

// =============================================================================
// QUESTION FORM
// =============================================================================

// QuestionForm walks the user through one prompt instance question by
// question. Single-select questions answer on enter; multi-select
// questions toggle with space and confirm with enter; questions without
// options take free-form text.
type QuestionForm struct {
	Prompt *prompt.Prompt
	Width  int

	theme   *styles.Theme
	index   int
	cursor  int
	checked []map[int]bool
	answers []prompt.Answer
	input   textinput.Model

	complete bool
}

// NewQuestionForm creates a form over the given prompt instance.
func NewQuestionForm(theme *styles.Theme, p *prompt.Prompt) *QuestionForm {
	ti := textinput.New()
	ti.Placeholder = "type your answer"
	ti.CharLimit = 2000

	f := &QuestionForm{
		Prompt:  p,
		Width:   80,
		theme:   theme,
		checked: make([]map[int]bool, len(p.Questions)),
		answers: make([]prompt.Answer, 0, len(p.Questions)),
		input:   ti,
	}
	for i := range f.checked {
		f.checked[i] = make(map[int]bool)
	}
	f.focusIfFreeForm()
	return f
}

// Complete reports whether every question has an answer.
func (f *QuestionForm) Complete() bool {
	return f.complete
}

// Answers returns the collected answers, one per question. Only valid
// once Complete reports true.
func (f *QuestionForm) Answers() []prompt.Answer {
	return f.answers
}

// current returns the question being answered.
func (f *QuestionForm) current() prompt.Question {
	return f.Prompt.Questions[f.index]
}

func (f *QuestionForm) focusIfFreeForm() {
	if f.complete {
		return
	}
	if len(f.current().Options) == 0 {
		f.input.SetValue("")
		f.input.Focus()
	} else {
		f.input.Blur()
	}
}

// Update handles a key press. Returns a command for cursor blinking on
// free-form questions.
func (f *QuestionForm) Update(msg tea.KeyMsg) tea.Cmd {
	if f.complete || f.Prompt.Submitted() {
		return nil
	}

	q := f.current()

	// Free-form question: everything but enter goes to the text input.
	if len(q.Options) == 0 {
		if msg.String() == "enter" {
			text := strings.TrimSpace(f.input.Value())
			if text == "" {
				return nil
			}
			f.answers = append(f.answers, prompt.Answer{Text: text})
			f.advance()
			return nil
		}
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		if f.cursor > 0 {
			f.cursor--
		}
	case "down", "j":
		if f.cursor < len(q.Options)-1 {
			f.cursor++
		}
	case " ":
		if q.MultiSelect {
			f.checked[f.index][f.cursor] = !f.checked[f.index][f.cursor]
		}
	case "enter":
		if q.MultiSelect {
			labels := f.checkedLabels(q)
			if len(labels) == 0 {
				return nil
			}
			f.answers = append(f.answers, prompt.Answer{Labels: labels})
		} else {
			f.answers = append(f.answers, prompt.Answer{
				Labels: []string{q.Options[f.cursor].Label},
			})
		}
		f.advance()
	}
	return nil
}

// checkedLabels collects toggled labels in option order.
func (f *QuestionForm) checkedLabels(q prompt.Question) []string {
	var labels []string
	for i, opt := range q.Options {
		if f.checked[f.index][i] {
			labels = append(labels, opt.Label)
		}
	}
	return labels
}

func (f *QuestionForm) advance() {
	f.index++
	f.cursor = 0
	if f.index >= len(f.Prompt.Questions) {
		f.complete = true
		return
	}
	f.focusIfFreeForm()
}

// View renders the form: answered questions as one-line summaries, the
// active question with its options, and remaining questions as counts.
func (f *QuestionForm) View() string {
	if f.Prompt.Submitted() {
		return f.theme.QuestionBox.Width(f.boxWidth()).Render(
			f.theme.QuestionAnswered.Render("Answered."),
		)
	}

	var b strings.Builder

	header := "Agent question"
	if len(f.Prompt.Questions) > 1 {
		header += " (" + strconv.Itoa(min(f.index+1, len(f.Prompt.Questions))) + "/" + strconv.Itoa(len(f.Prompt.Questions)) + ")"
	}
	b.WriteString(f.theme.QuestionHeader.Render(styles.StatusIndicators.Question + " " + header))
	b.WriteString("\n")

	// Answers already given.
	for i, a := range f.answers {
		line := f.Prompt.Questions[i].Question + " -> " + a.Value()
		b.WriteString(f.theme.QuestionAnswered.Render(line))
		b.WriteString("\n")
	}

	if !f.complete {
		b.WriteString(f.renderCurrent())
	}

	return f.theme.QuestionBox.Width(f.boxWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

// renderCurrent renders the active question and its input.
func (f *QuestionForm) renderCurrent() string {
	q := f.current()
	var b strings.Builder

	if q.Header != "" {
		b.WriteString(f.theme.QuestionHeader.Render(q.Header))
		b.WriteString("\n")
	}
	b.WriteString(f.theme.QuestionText.Render(q.Question))
	b.WriteString("\n")

	if len(q.Options) == 0 {
		b.WriteString(f.input.View())
		return b.String()
	}

	for i, opt := range q.Options {
		label := opt.Label
		if q.MultiSelect {
			mark := "[ ] "
			if f.checked[f.index][i] {
				mark = "[x] "
			}
			label = mark + label
		}

		switch {
		case i == f.cursor:
			b.WriteString(f.theme.OptionSelected.Render("> " + label))
		case q.MultiSelect && f.checked[f.index][i]:
			b.WriteString(f.theme.OptionChecked.Render("  " + label))
		default:
			b.WriteString(f.theme.Option.Render("  " + label))
		}
		b.WriteString("\n")

		if opt.Description != "" && i == f.cursor {
			b.WriteString(f.theme.OptionDesc.Render(opt.Description))
			b.WriteString("\n")
		}
	}

	hint := "enter select"
	if q.MultiSelect {
		hint = "space toggle, enter confirm"
	}
	b.WriteString(f.theme.OptionDesc.Render(hint))

	return b.String()
}

func (f *QuestionForm) boxWidth() int {
	w := f.Width - 4
	if w < 24 {
		w = 24
	}
	return w
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
