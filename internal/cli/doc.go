// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the plain-terminal chat REPL for agentline.
//
// The REPL is the non-TUI surface: line-at-a-time input with liner
// history, streamed agent output to stdout, markdown rendering on TTYs,
// and slash commands for session control. Agent questions fall back to
// numbered text prompts instead of the TUI's form.
package cli
