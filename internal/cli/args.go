// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Command line argument parsing for agentline.
//
// Usage:
//   agentline                 Launch the TUI (default)
//   agentline chat            Line-oriented REPL chat
//   agentline version         Print version information
//   agentline help            Show usage
//
// Flags:
//   --backend URL     Override the backend base URL
//   --no-markdown     Disable markdown rendering
//   --debug           Enable debug logging to ~/.agentline/debug.log
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Command identifies the requested top-level command.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdVersion
	CmdHelp
)

// Args holds parsed command line options.
type Args struct {
	BackendURL string
	NoMarkdown bool
	Debug      bool
}

// Version information, set at build time via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Parse reads os.Args and returns the command and options. Unknown
// flags print usage and exit.
func Parse() (Command, Args) {
	cmd := CmdTUI
	var args Args

	rest := os.Args[1:]
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		switch rest[0] {
		case "chat":
			cmd = CmdChat
		case "version":
			return CmdVersion, args
		case "help":
			return CmdHelp, args
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
			PrintUsage()
			os.Exit(2)
		}
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--backend":
			if i+1 >= len(rest) {
				fmt.Fprintln(os.Stderr, "--backend requires a URL")
				os.Exit(2)
			}
			i++
			args.BackendURL = rest[i]
		case "--no-markdown":
			args.NoMarkdown = true
		case "--debug":
			args.Debug = true
		case "--version":
			return CmdVersion, args
		case "-h", "--help":
			return CmdHelp, args
		default:
			fmt.Fprintf(os.Stderr, "unknown flag %q\n\n", rest[i])
			PrintUsage()
			os.Exit(2)
		}
	}

	return cmd, args
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Println(`agentline - terminal client for a streaming agent backend

Usage:
  agentline [flags]           Launch the TUI
  agentline chat [flags]      Line-oriented REPL chat
  agentline version           Print version information
  agentline help              Show this help

Flags:
  --backend URL     Override the backend base URL
  --no-markdown     Disable markdown rendering
  --debug           Enable debug logging to ~/.agentline/debug.log
  --version         Print version information
  -h, --help        Show this help`)
}

// PrintVersion writes version details to stdout.
func PrintVersion() {
	fmt.Printf("agentline %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
