package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", h.GetClientCount(), want)
}

// Stalled clients use an unbuffered send channel with nothing draining it, so
// every delivery attempt takes the drop path.
func stalledClient(h *Hub, userID uint) *Client {
	return &Client{hub: h, send: make(chan []byte), userID: userID}
}

func TestBroadcastToUserConcurrentDrop(t *testing.T) {
	h := NewHub()
	go h.Run()

	for i := 0; i < 4; i++ {
		h.register <- stalledClient(h, 7)
	}
	other := &Client{hub: h, send: make(chan []byte, 1), userID: 8}
	h.register <- other
	waitForClients(t, h, 5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.BroadcastToUser(7, map[string]string{"type": "notification"})
		}()
	}
	wg.Wait()

	// Every stalled user-7 connection dropped exactly once, the user-8
	// connection untouched.
	waitForClients(t, h, 1)
	if got := h.GetClientCount(); got != 1 {
		t.Errorf("client count after concurrent drops = %d, want 1", got)
	}
}

func TestBroadcastDropsStalledClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	h.register <- stalledClient(h, 1)
	healthy := &Client{hub: h, send: make(chan []byte, 4), userID: 2}
	h.register <- healthy
	waitForClients(t, h, 2)

	h.broadcast <- []byte(`{"type":"payment_recorded"}`)
	waitForClients(t, h, 1)

	select {
	case msg := <-healthy.send:
		if !strings.Contains(string(msg), "payment_recorded") {
			t.Errorf("healthy client got %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("healthy client received nothing")
	}
}

func TestUnregisterAfterDropIsSafe(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := stalledClient(h, 3)
	h.register <- client
	waitForClients(t, h, 1)

	h.BroadcastToUser(3, map[string]string{"type": "notification"})
	waitForClients(t, h, 0)

	// The pumps still hand the client to unregister on exit; the hub must
	// not close the send channel a second time.
	h.unregister <- client
	waitForClients(t, h, 0)
}

func TestServeWSDeliversBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, 42)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	waitForClients(t, h, 1)

	h.BroadcastToUser(42, map[string]interface{}{"type": "rate_changed", "rate": 0.4})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), "rate_changed") {
		t.Errorf("got %q, want a rate_changed event", msg)
	}
}
