// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for the streaming agent
// backend.
package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/agentline-tui/internal/protocol"
	"github.com/jeranaias/agentline-tui/internal/session"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Manager) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewManager()
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 1000 // tests should not wait on the limiter
	return NewClient(cfg, sessions), sessions
}

func writeEvents(w http.ResponseWriter, events ...string) {
	for _, ev := range events {
		io.WriteString(w, "data: "+ev+"\n\n")
	}
	io.WriteString(w, "data: [DONE]\n\n")
}

func collect(events *[]*protocol.Event) StreamCallback {
	return func(ev *protocol.Event) {
		*events = append(*events, ev)
	}
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSendNullSessionOnFirstTurn(t *testing.T) {
	var body ChatRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		// session_id must be present and null, not omitted.
		var generic map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &generic))
		assert.Equal(t, "null", string(generic["session_id"]))

		writeEvents(w, `{"type":"done","session_id":"abc"}`)
	}))

	var events []*protocol.Event
	require.NoError(t, client.Send(context.Background(), "hello", collect(&events)))

	assert.Equal(t, "hello", body.Message)
	assert.Nil(t, body.SessionID)
	require.Len(t, events, 1)
	assert.Equal(t, protocol.EventDone, events[0].Type)
}

func TestSendAttachesSessionAtSendTime(t *testing.T) {
	var got *string
	client, sessions := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = body.SessionID
		writeEvents(w, `{"type":"done","session_id":"abc"}`)
	}))

	// Session observed after client construction; Send must still see it.
	sessions.Observe("abc")

	require.NoError(t, client.Send(context.Background(), "again", func(ev *protocol.Event) {}))
	require.NotNil(t, got)
	assert.Equal(t, "abc", *got)
}

func TestSendAdoptsHeaderSession(t *testing.T) {
	client, sessions := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-session-id", "from-header")
		writeEvents(w, `{"type":"text","text":"hi"}`)
	}))

	require.NoError(t, client.Send(context.Background(), "x", func(ev *protocol.Event) {}))
	assert.Equal(t, "from-header", sessions.Attach())
}

func TestSendTransportFailure(t *testing.T) {
	sessions := session.NewManager()
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1" // nothing listens here
	cfg.RequestsPerSecond = 1000
	client := NewClient(cfg, sessions)

	err := client.Send(context.Background(), "x", func(ev *protocol.Event) {})
	assert.True(t, IsNotRunning(err), "expected backend-down error, got %v", err)
}

func TestSendNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"Message cannot be empty"}`)
	}))

	err := client.Send(context.Background(), "", func(ev *protocol.Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message cannot be empty")
}

func TestSendCancellationMidStream(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: {\"type\":\"text\",\"text\":\"one \"}\n\n")
		io.WriteString(w, "data: {\"type\":\"text\",\"text\":\"two \"}\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release // hold the stream open until the client cancels
	}))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())

	var events []*protocol.Event
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Send(ctx, "x", func(ev *protocol.Event) {
			events = append(events, ev)
			if len(events) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancellation did not stop the read loop")
	}

	// Both deltas seen before cancel are preserved for the caller.
	require.Len(t, events, 2)
	assert.Equal(t, "one ", events[0].Text)
	assert.Equal(t, "two ", events[1].Text)
}

// =============================================================================
// RESPOND TESTS
// =============================================================================

func TestRespondUsesDedicatedEndpoint(t *testing.T) {
	var path string
	var body RespondRequest
	client, sessions := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEvents(w, `{"type":"done","session_id":"abc"}`)
	}))
	sessions.Observe("abc")

	answer := `{"What color?":"Red"}`
	require.NoError(t, client.Respond(context.Background(), answer, func(ev *protocol.Event) {}))

	assert.Equal(t, "/api/chat/respond", path)
	assert.Equal(t, "abc", body.SessionID)
	assert.Equal(t, answer, body.Response)
}

func TestRespondFallsBackToChatEndpoint(t *testing.T) {
	var paths []string
	client, sessions := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/chat/respond" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, `{"Q":"A"}`, body.Message)
		writeEvents(w, `{"type":"done","session_id":"abc"}`)
	}))
	sessions.Observe("abc")

	require.NoError(t, client.Respond(context.Background(), `{"Q":"A"}`, func(ev *protocol.Event) {}))
	assert.Equal(t, []string{"/api/chat/respond", "/api/chat"}, paths)
}

func TestRespondWithoutSession(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without a session")
	}))

	err := client.Respond(context.Background(), "{}", func(ev *protocol.Event) {})
	require.Error(t, err)
}

// =============================================================================
// SESSION CLEANUP TESTS
// =============================================================================

func TestDeleteSession(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		io.WriteString(w, `{"deleted":true}`)
	}))

	require.NoError(t, client.DeleteSession(context.Background(), "abc"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/chat/sessions/abc", path)
}

func TestDeleteSessionEmptyID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty id must not hit the backend")
	}))
	assert.NoError(t, client.DeleteSession(context.Background(), ""))
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		io.WriteString(w, `{"status":"healthy"}`)
	}))
	assert.NoError(t, client.CheckRunning(context.Background()))
}
