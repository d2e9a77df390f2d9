// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	// Spot-check a few styles render without panicking and carry content.
	out := theme.UserBubble.Render("hello")
	if !strings.Contains(out, "hello") {
		t.Errorf("UserBubble.Render lost content: %q", out)
	}
	out = theme.ErrorBox.Render("boom")
	if !strings.Contains(out, "boom") {
		t.Errorf("ErrorBox.Render lost content: %q", out)
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got mode %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("done"), StatusIndicators.Success) {
		t.Error("RenderSuccess missing success marker")
	}
	if !strings.Contains(RenderError("bad"), StatusIndicators.Error) {
		t.Error("RenderError missing error marker")
	}
	if !strings.Contains(RenderWarning("careful"), StatusIndicators.Warning) {
		t.Error("RenderWarning missing warning marker")
	}
	if !strings.Contains(RenderInfo("fyi"), StatusIndicators.Info) {
		t.Error("RenderInfo missing info marker")
	}
}

func TestSpinnerFrameWraps(t *testing.T) {
	s := LineSpinner
	for i := 0; i < len(s.Frames)*3; i++ {
		if s.Frame(i) != s.Frames[i%len(s.Frames)] {
			t.Fatalf("frame %d did not wrap", i)
		}
	}
	if s.Frame(-1) == "" {
		t.Error("negative tick should still return a frame")
	}
}

func TestFrameDuration(t *testing.T) {
	if d := LineSpinner.FrameDuration(); d != 100*time.Millisecond {
		t.Errorf("LineSpinner frame duration = %v", d)
	}
	zero := SpinnerConfig{}
	if d := zero.FrameDuration(); d != 100*time.Millisecond {
		t.Errorf("zero-FPS fallback = %v", d)
	}
}
