// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the agentline TUI.
//
// Components are small bubbletea sub-models (spinner, question form) or
// pure render helpers (tool call cards, code blocks, markdown, status bar)
// that the chat view composes. Each takes the shared *styles.Theme so the
// whole interface restyles together.
package components
