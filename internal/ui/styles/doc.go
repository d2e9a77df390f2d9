// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the agentline TUI.
//
// All colors are Lip Gloss AdaptiveColor pairs so the same palette reads
// well on light and dark terminals. The Theme struct bundles every style
// the chat view needs; construct one with NewTheme and share it across
// components.
//
// The configured theme ("dark" or "light") overrides terminal background
// detection via ApplyBackground, which must run before any style renders.
package styles
