// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// messages.
//
// A conversation is the UI-side message history for the current
// process only — the server holds the real conversational context,
// keyed by session id. Nothing here is persisted.
package model
