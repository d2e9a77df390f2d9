// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive chat REPL for the agentline CLI.
//
// Handles the "agentline chat" command: a line-oriented conversation
// with the backend agent for terminals where the full TUI is unwanted
// (ssh sessions, scripts wrapping a pty, minimal environments).
//
// Interactive commands (during chat):
//   /help, /h     Show available commands
//   /new, /n      Start a new session (discards server-side state)
//   /status, /s   Show session statistics
//   /quit, /q     Exit chat
//   Ctrl+C        Cancel current turn
//   Ctrl+D        Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/agentline-tui/internal/agent"
	"github.com/jeranaias/agentline-tui/internal/config"
	"github.com/jeranaias/agentline-tui/internal/prompt"
	"github.com/jeranaias/agentline-tui/internal/protocol"
	"github.com/jeranaias/agentline-tui/internal/session"
	"github.com/jeranaias/agentline-tui/internal/turn"
	"github.com/jeranaias/agentline-tui/internal/ui/components"
	"github.com/jeranaias/agentline-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	questionStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputReader provides line editing and persistent history via liner.
type inputReader struct {
	line        *liner.State
	historyFile string
}

func newInputReader() *inputReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &inputReader{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	r.loadHistory()
	return r
}

func (r *inputReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation. Non-empty lines are
// appended to history.
func (r *inputReader) ReadInput(promptText string) (string, error) {
	input, err := r.line.Prompt(promptText)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *inputReader) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *inputReader) Close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// REPL SESSION
// =============================================================================

// ReplSession holds the state for one interactive chat run.
type ReplSession struct {
	cfg      *config.Config
	client   *agent.Client
	sessions *session.Manager
	input    *inputReader
	markdown *components.MarkdownRenderer

	startTime time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// NewReplSession creates a REPL session over the given client.
func NewReplSession(cfg *config.Config, client *agent.Client) *ReplSession {
	return &ReplSession{
		cfg:       cfg,
		client:    client,
		sessions:  client.Sessions(),
		input:     newInputReader(),
		markdown:  components.NewMarkdownRenderer(min(TerminalWidth(), 100)),
		startTime: time.Now(),
	}
}

func (s *ReplSession) setCancel(fn context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFunc = fn
}

func (s *ReplSession) cancelTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelFunc == nil {
		return false
	}
	s.cancelFunc()
	s.cancelFunc = nil
	return true
}

// Run drives the REPL until the user exits.
func (s *ReplSession) Run() error {
	defer s.input.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := s.client.CheckRunning(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("backend is not reachable at %s: %w", s.cfg.Backend.URL, err)
	}

	s.printWelcome()

	// First Ctrl+C cancels the in-flight turn; at the prompt liner
	// surfaces it as ErrPromptAborted instead.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if s.cancelTurn() {
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[cancelled]"))
			}
		}
	}()

	for {
		input, err := s.input.ReadInput(promptStyle.Render("agentline> "))
		if err != nil {
			// Ctrl+C at the prompt or Ctrl+D: exit gracefully.
			fmt.Println()
			s.printSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing := s.handleSlashCommand(input)
			if !keepGoing {
				s.printSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.printSummary()
			return nil
		}

		if err := s.runTurn(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[error]"), err)
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand executes a /command. Returns false to exit.
func (s *ReplSession) handleSlashCommand(input string) bool {
	cmd := strings.ToLower(strings.Fields(input)[0])

	switch cmd {
	case "/help", "/h":
		s.printHelp()
	case "/new", "/n":
		s.newSession()
	case "/status", "/s":
		s.printStatus()
	case "/quit", "/q", "/exit":
		return false
	default:
		fmt.Println(warningStyle.Render("unknown command " + cmd + " (try /help)"))
	}
	return true
}

func (s *ReplSession) printHelp() {
	fmt.Println(infoStyle.Render(`Commands:
  /help, /h     show this help
  /new, /n      start a new session
  /status, /s   show session statistics
  /quit, /q     exit
  Ctrl+C        cancel the current turn
  Ctrl+D        exit`))
}

func (s *ReplSession) newSession() {
	oldID := s.sessions.Reset()
	if oldID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.client.DeleteSession(ctx, oldID); err != nil {
			fmt.Println(warningStyle.Render("could not discard old session: " + err.Error()))
		}
	}
	fmt.Println(infoStyle.Render("Started a new session."))
}

func (s *ReplSession) printStatus() {
	status := s.sessions.GetStatus()

	fmt.Println(welcomeStyle.Render("Session status"))
	if status.Active {
		fmt.Println(infoStyle.Render("  session:  " + status.SessionID))
		fmt.Println(infoStyle.Render("  turns:    " + strconv.Itoa(status.Turns)))
		fmt.Println(infoStyle.Render("  cost:     " + components.FormatCost(status.TotalCost)))
		fmt.Println(infoStyle.Render("  started:  " + status.StartTime.Format(time.Kitchen)))
	} else {
		fmt.Println(infoStyle.Render("  no active session"))
	}
}

func (s *ReplSession) printWelcome() {
	fmt.Println(welcomeStyle.Render("agentline"))
	fmt.Println(infoStyle.Render("Chatting with " + s.cfg.Backend.URL + ". Type /help for commands."))
	fmt.Println()
}

func (s *ReplSession) printSummary() {
	status := s.sessions.GetStatus()
	if status.Turns == 0 {
		return
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf(
		"%d turns, %s, %s elapsed",
		status.Turns,
		components.FormatCost(status.TotalCost),
		time.Since(s.startTime).Round(time.Second),
	)))
}

// =============================================================================
// TURN EXECUTION
// =============================================================================

// runTurn sends one message and streams the reply, answering agent
// questions through numbered prompts until the turn completes.
func (s *ReplSession) runTurn(input string) error {
	acc := turn.NewAccumulator(s.sessions)
	prompts := prompt.NewSet()

	useMarkdown := s.cfg.UI.Markdown && IsStdoutTTY()
	printed := 0

	callback := func(ev *protocol.Event) {
		snap := acc.Apply(ev)
		if p := prompt.Extract(ev); p != nil {
			prompts.Add(p)
		}

		switch ev.Type {
		case protocol.EventText:
			// Stream deltas directly unless markdown is collected whole.
			if !useMarkdown && len(snap.Text) > printed {
				fmt.Print(snap.Text[printed:])
				printed = len(snap.Text)
			}
		case protocol.EventToolStart:
			fmt.Println(toolStyle.Render("\n" + styles.StatusIndicators.Pending + " " + ev.ToolName))
		case protocol.EventToolResult:
			marker := styles.StatusIndicators.Success
			if ev.IsError {
				marker = styles.StatusIndicators.Error
			}
			fmt.Println(toolStyle.Render(marker + " done"))
		}
	}

	fmt.Println()

	snap, err := s.streamCall(func(ctx context.Context) error {
		return s.client.Send(ctx, input, callback)
	}, acc)
	if err != nil && snap.Status == turn.StatusError {
		return err
	}

	// Answer questions until the turn stops pausing.
	for snap.Status == turn.StatusAwaitingInput {
		pending := prompts.Pending()
		if len(pending) == 0 {
			return fmt.Errorf("agent asked for input but sent no readable questions")
		}

		response, perr := s.collectAnswers(pending[0])
		if perr != nil {
			// User aborted the question; cancel the whole turn.
			snap = acc.Finish(context.Canceled)
			break
		}

		snap, err = s.streamCall(func(ctx context.Context) error {
			return s.client.Respond(ctx, response, callback)
		}, acc)
		if err != nil && snap.Status == turn.StatusError {
			return err
		}
	}

	s.finishTurn(snap, useMarkdown)
	return nil
}

// streamCall runs one streaming request with a fresh cancellable
// context and folds its outcome into the accumulator.
func (s *ReplSession) streamCall(call func(context.Context) error, acc *turn.Accumulator) (turn.Snapshot, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.setCancel(cancel)
	defer func() {
		s.setCancel(nil)
		cancel()
	}()

	err := call(ctx)
	return acc.Finish(err), err
}

// finishTurn prints the turn's closing output.
func (s *ReplSession) finishTurn(snap turn.Snapshot, useMarkdown bool) {
	switch snap.Status {
	case turn.StatusComplete:
		if useMarkdown && snap.Text != "" {
			fmt.Print(s.markdown.Render(snap.Text))
		} else {
			fmt.Println()
		}
		s.sessions.RecordTurn(snap.Cost)
		if s.cfg.UI.ShowCost && snap.Cost > 0 {
			fmt.Println(toolStyle.Render("(" + components.FormatCost(snap.Cost) + ")"))
		}

	case turn.StatusCancelled:
		fmt.Println()

	case turn.StatusError:
		fmt.Println()
		if snap.ErrText != "" {
			fmt.Fprintln(os.Stderr, errorStyle.Render("[error] ")+snap.ErrText)
		}
	}
	fmt.Println()
}

// =============================================================================
// QUESTION PROMPTS
// =============================================================================

// collectAnswers asks each question on the terminal and returns the
// serialized tool result to post back.
func (s *ReplSession) collectAnswers(p *prompt.Prompt) (string, error) {
	fmt.Println()
	fmt.Println(questionStyle.Render(styles.StatusIndicators.Question + " The agent has a question"))

	answers := make([]prompt.Answer, 0, len(p.Questions))
	for _, q := range p.Questions {
		a, err := s.askOne(q)
		if err != nil {
			return "", err
		}
		answers = append(answers, a)
	}

	return p.Answer(answers)
}

// askOne prompts for a single question. Option questions take numbers
// ("2" or "1,3" for multi-select); free-form questions take text.
func (s *ReplSession) askOne(q prompt.Question) (prompt.Answer, error) {
	if q.Header != "" {
		fmt.Println(questionStyle.Render(q.Header))
	}
	fmt.Println(infoStyle.Render(q.Question))

	if len(q.Options) == 0 {
		text, err := s.input.ReadInput(promptStyle.Render("answer> "))
		if err != nil {
			return prompt.Answer{}, err
		}
		return prompt.Answer{Text: strings.TrimSpace(text)}, nil
	}

	for i, opt := range q.Options {
		line := fmt.Sprintf("  %d) %s", i+1, opt.Label)
		if opt.Description != "" {
			line += infoStyle.Render(" - " + opt.Description)
		}
		fmt.Println(line)
	}

	hint := "choice> "
	if q.MultiSelect {
		hint = "choices (e.g. 1,3)> "
	}

	for {
		raw, err := s.input.ReadInput(promptStyle.Render(hint))
		if err != nil {
			return prompt.Answer{}, err
		}

		labels, ok := parseChoices(raw, q)
		if !ok {
			fmt.Println(warningStyle.Render("enter a number between 1 and " + strconv.Itoa(len(q.Options))))
			continue
		}
		return prompt.Answer{Labels: labels}, nil
	}
}

// parseChoices maps "1,3" style input onto option labels.
func parseChoices(raw string, q prompt.Question) ([]string, bool) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil, false
	}
	if !q.MultiSelect && len(fields) > 1 {
		return nil, false
	}

	seen := make(map[int]bool)
	var labels []string
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(q.Options) {
			return nil, false
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		labels = append(labels, q.Options[n-1].Label)
	}
	return labels, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
