// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debuglog provides an opt-in diagnostic logger.
//
// A TUI cannot log to stderr without corrupting the display, so all
// diagnostics go to a file under the config directory. Logging is
// disabled (a no-op) unless AGENTLINE_DEBUG is set, keeping the hot
// streaming path free of I/O in normal use.
package debuglog

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// EnvVar enables debug logging when set to a non-empty value.
const EnvVar = "AGENTLINE_DEBUG"

var (
	mu     sync.Mutex
	logger = zap.NewNop().Sugar()
)

// Init configures the logger. When the AGENTLINE_DEBUG environment
// variable is unset this is a no-op and the logger stays silent.
// The log file lives at <dir>/debug.log.
func Init(dir string) error {
	if os.Getenv(EnvVar) == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "debug.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
	return nil
}

// Printf writes a formatted debug line. Safe to call from any
// goroutine, before or without Init.
func Printf(format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()
	l.Debugf(format, args...)
}

// Sync flushes any buffered log entries. Called on shutdown.
func Sync() {
	mu.Lock()
	l := logger
	mu.Unlock()
	_ = l.Sync()
}
