// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer wraps a glamour renderer for agent output. A nil or
// failed renderer degrades to plain text rather than erroring.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer wrapping at the given width.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &MarkdownRenderer{renderer: r, width: width}
}

// SetWidth rebuilds the renderer when the wrap width changes.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == m.width {
		return
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	); err == nil {
		m.renderer = r
		m.width = width
	}
}

// Render renders markdown for terminal display. Returns the input
// unchanged when rendering is unavailable or fails.
func (m *MarkdownRenderer) Render(content string) string {
	if m == nil || m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
