// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt bridges the agent's interactive questions to the UI.
//
// When the backend invokes the reserved AskUserQuestion tool (or emits
// a user_input_required event), the turn pauses: the tool call stays
// pending in the ledger and no further server events arrive until the
// user answers. This package extracts the question payload, tracks the
// pending-to-answered lifecycle of each prompt instance, and
// serializes the answers into the tool-result string that resumes the
// turn.
//
// A prompt instance is answered exactly once. The guard is a local
// submitted flag on the instance, not the absence of a result, so a
// network race cannot allow a double submit even if the backend reuses
// a tool id.
package prompt
