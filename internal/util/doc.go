// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across agentline: UTF-8 safe
// string truncation for terminal rendering, and crash-safe file writes
// used when saving configuration.
package util
