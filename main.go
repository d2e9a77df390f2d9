// agentline - a terminal client for a streaming agent backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentline-tui/internal/agent"
	"github.com/jeranaias/agentline-tui/internal/cli"
	"github.com/jeranaias/agentline-tui/internal/config"
	"github.com/jeranaias/agentline-tui/internal/debuglog"
	"github.com/jeranaias/agentline-tui/internal/session"
	"github.com/jeranaias/agentline-tui/internal/ui/chat"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
)

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfg := loadConfig(args)

	if args.Debug {
		os.Setenv(debuglog.EnvVar, "1")
	}
	if dir, err := config.ConfigDir(); err == nil {
		if err := debuglog.Init(dir); err != nil {
			fmt.Fprintf(os.Stderr, "debug log unavailable: %v\n", err)
		}
	}
	defer debuglog.Sync()

	client := newClient(cfg)

	switch cmd {
	case cli.CmdChat:
		runRepl(cfg, client)
	default:
		runTUI(cfg, client)
	}
}

// loadConfig loads configuration and applies flag overrides on top.
func loadConfig(args cli.Args) *config.Config {
	if err := config.WriteDefaultIfMissing(); err != nil {
		fmt.Fprintf(os.Stderr, "config: could not write default config: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
		cfg = config.Default()
	}

	if args.BackendURL != "" {
		cfg.Backend.URL = args.BackendURL
	}
	if args.NoMarkdown {
		cfg.UI.Markdown = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	config.SetGlobal(cfg)
	return cfg
}

// newClient builds the agent client from configuration.
func newClient(cfg *config.Config) *agent.Client {
	clientCfg := &agent.Config{
		BaseURL:           cfg.Backend.URL,
		ChatPath:          cfg.Backend.ChatPath,
		RespondPath:       cfg.Backend.RespondPath,
		Timeout:           time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
	}
	return agent.NewClient(clientCfg, session.NewManager())
}

// runRepl runs the line-oriented chat surface.
func runRepl(cfg *config.Config, client *agent.Client) {
	repl := cli.NewReplSession(cfg, client)
	if err := repl.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// TUI
// =============================================================================

// app is the Bubble Tea root model wrapping the chat view.
type app struct {
	chat chat.Model
}

func (a app) Init() tea.Cmd {
	return a.chat.Init()
}

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.chat.Update(msg)
	a.chat = m
	return a, cmd
}

func (a app) View() string {
	return a.chat.View()
}

// runTUI launches the full-screen interface. Without a terminal it
// falls back to an error pointing at the REPL.
func runTUI(cfg *config.Config, client *agent.Client) {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		fmt.Fprintln(os.Stderr, "agentline needs a terminal; try `agentline chat` for piped use")
		os.Exit(1)
	}

	styles.ApplyBackground(cfg.UI.Theme)

	// Hot-reload config edits while the TUI runs. Reloads only touch
	// the global snapshot; a restart picks up backend changes.
	watcher, err := config.NewWatcher(func(updated *config.Config) {
		debuglog.Printf("config reloaded from disk")
	})
	if err == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		}
	}

	theme := styles.NewTheme()
	program := tea.NewProgram(
		app{chat: chat.New(theme, cfg, client)},
		tea.WithAltScreen(),
	)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
