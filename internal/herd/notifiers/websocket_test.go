package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daniacca/herdsim/internal/herd"
)

func TestWebSocketNotifier_Identity(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	defer notifier.Close()

	if notifier.ID() != "ws" {
		t.Errorf("Expected ID 'ws', got %q", notifier.ID())
	}
	if notifier.Type() != "websocket" {
		t.Errorf("Expected type 'websocket', got %q", notifier.Type())
	}
}

func TestWebSocketNotifier_NotifyWithoutClients(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	defer notifier.Close()

	// With no clients connected the event is simply dropped.
	event := herd.TickEvent{RunID: "run-1", Counts: herd.Counts{Tick: 1}}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Errorf("Notify should not fail without clients: %v", err)
	}
}

func TestWebSocketNotifier_BroadcastsToClient(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	defer notifier.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := notifier.Upgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		notifier.RegisterClient(conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Give the server handler time to register the connection.
	time.Sleep(100 * time.Millisecond)

	event := herd.TickEvent{
		RunID:  "run-1",
		Counts: herd.Counts{Tick: 3, Susceptible: 90, Infected: 5, Immune: 5},
	}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var got herd.TickEvent
	if err := json.Unmarshal(message, &got); err != nil {
		t.Fatalf("Failed to decode broadcast message: %v", err)
	}
	if got.RunID != event.RunID || got.Counts != event.Counts {
		t.Errorf("Received %+v, want %+v", got, event)
	}
}

func TestWebSocketNotifier_CloseIsSafe(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	if err := notifier.Close(); err != nil {
		t.Errorf("Close should not return error: %v", err)
	}

	// Registration after close must not block.
	done := make(chan struct{})
	go func() {
		notifier.RegisterClient(nil)
		notifier.UnregisterClient(nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("RegisterClient blocked after Close")
	}
}
