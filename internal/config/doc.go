// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// agentline.
//
// # Key Types
//
//   - Config: the complete configuration tree
//   - Watcher: fsnotify-based hot reload of the config file
//
// # Precedence
//
// Built-in defaults, then ~/.agentline/config.toml, then AGENTLINE_*
// environment variables. A sparse config file is fine; zero values
// fall back to defaults before validation.
package config
