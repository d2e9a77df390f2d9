// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the streaming agent
// backend.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/agentline-tui/internal/debuglog"
	"github.com/jeranaias/agentline-tui/internal/protocol"
	"github.com/jeranaias/agentline-tui/internal/session"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the agent backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error

	// routeMissing marks a 404/405 on the respond endpoint, which
	// triggers the chat-endpoint fallback rather than a user error.
	routeMissing bool
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeBadRequest
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "agent backend is not reachable"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsNotRunning checks if an error indicates the backend is down.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the backend client.
type Config struct {
	// BaseURL of the agent backend (default: http://127.0.0.1:8000).
	BaseURL string

	// ChatPath is the streaming chat endpoint.
	ChatPath string

	// RespondPath is the dedicated answer endpoint; when the backend
	// answers it with 404/405 the client falls back to ChatPath.
	RespondPath string

	// Timeout for non-streaming requests (default: 30s). Streaming
	// requests have no client timeout; cancellation comes from the
	// caller's context.
	Timeout time.Duration

	// RequestsPerSecond caps outgoing turn starts (default: 2).
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "http://127.0.0.1:8000",
		ChatPath:          "/api/chat",
		RespondPath:       "/api/chat/respond",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
	}
}

// =============================================================================
// REQUEST / RESPONSE SHAPES
// =============================================================================

// ChatRequest is the outgoing body for a chat turn. SessionID
// marshals as null before the first completed turn — the backend
// treats null as "start a new session".
type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// RespondRequest continues a turn paused on AskUserQuestion.
type RespondRequest struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// backendError is the JSON error body for non-success statuses.
type backendError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// sessionHeader is the out-of-band channel for the session id,
// adopted before any body bytes are read.
const sessionHeader = "x-session-id"

// =============================================================================
// CLIENT
// =============================================================================

// StreamCallback is called for each event received during a turn, in
// arrival order, from the single read loop goroutine.
type StreamCallback func(ev *protocol.Event)

// Client handles communication with the agent backend. The session
// manager supplies the id for each outgoing request at send time.
//
// Only one turn may be in flight per conversation; the caller (not the
// client) enforces that by disabling submission while streaming.
type Client struct {
	config     *Config
	httpClient *http.Client
	sessions   *session.Manager
	limiter    *rate.Limiter
}

// NewClient creates a backend client.
func NewClient(config *Config, sessions *session.Manager) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.ChatPath == "" {
		config.ChatPath = "/api/chat"
	}
	if config.RespondPath == "" {
		config.RespondPath = "/api/chat/respond"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 2
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		sessions: sessions,
		limiter:  rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// Sessions returns the session manager the client attaches from.
func (c *Client) Sessions() *session.Manager {
	return c.sessions
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// STREAMING TURNS
// =============================================================================

// Send starts a chat turn and streams its events to the callback.
// The session id is read from the session manager at send time. Blocks
// until the stream ends; returns context.Canceled (wrapped) when the
// caller cancels mid-stream.
func (c *Client) Send(ctx context.Context, message string, callback StreamCallback) error {
	body := ChatRequest{Message: message}
	if id := c.sessions.Attach(); id != "" {
		body.SessionID = &id
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	return c.stream(ctx, c.config.BaseURL+c.config.ChatPath, payload, callback)
}

// Respond continues a turn that is paused on an AskUserQuestion call
// by posting the serialized answer map. It tries the dedicated respond
// endpoint first; a backend without that route (404/405) gets the
// answer through the chat endpoint instead, carrying the serialized
// map as the message.
func (c *Client) Respond(ctx context.Context, response string, callback StreamCallback) error {
	sessionID := c.sessions.Attach()
	if sessionID == "" {
		return &ClientError{Type: ErrTypeBadRequest, Message: "no session to respond to"}
	}

	payload, err := json.Marshal(RespondRequest{SessionID: sessionID, Response: response})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	err = c.stream(ctx, c.config.BaseURL+c.config.RespondPath, payload, callback)

	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Type == ErrTypeBadRequest && clientErr.routeMissing {
		debuglog.Printf("agent: respond endpoint missing, falling back to chat endpoint")
		return c.Send(ctx, response, callback)
	}
	return err
}

// stream performs one streaming POST and decodes events until the
// stream ends.
func (c *Client) stream(ctx context.Context, url string, payload []byte, callback StreamCallback) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	// Streaming requests use a client without timeout; the caller's
	// context governs cancellation.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed {
		io.Copy(io.Discard, resp.Body)
		return &ClientError{
			Type:         ErrTypeBadRequest,
			Message:      "endpoint not available: " + resp.Status,
			routeMissing: true,
		}
	}

	if resp.StatusCode != http.StatusOK {
		msg := readErrorBody(resp.Body)
		if msg == "" {
			msg = "request failed: " + resp.Status
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: msg}
	}

	// The header is a fallback channel for the session id, adopted
	// before any body bytes are read.
	if id := resp.Header.Get(sessionHeader); id != "" {
		c.sessions.Observe(id)
	}

	dec := protocol.NewDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return context.Canceled
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}
		callback(ev)
	}
}

// =============================================================================
// SESSION CLEANUP
// =============================================================================

// DeleteSession asks the backend to drop a session, typically the old
// one after the user starts a new conversation. Best effort; a missing
// session is not an error.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	url := c.config.BaseURL + c.config.ChatPath + "/sessions/" + sessionID
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to delete session: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// readErrorBody extracts a human-readable message from a non-success
// response body.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var be backendError
	if err := json.Unmarshal(data, &be); err == nil {
		if be.Detail != "" {
			return be.Detail
		}
		if be.Error != "" {
			return be.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// drainAndClose drains a response body so the connection can be
// reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
