package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newStreamServer(hub *Hub) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream/:id", func(c *gin.Context) {
		Serve(hub, c, c.Param("id"))
	})
	return httptest.NewServer(r)
}

func TestServeRequiresUpgrade(t *testing.T) {
	srv := newStreamServer(NewHub(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stream/session-1")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-websocket request, got %d", resp.StatusCode)
	}
}

func TestServeStreamsBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	srv := newStreamServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream/session-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// Registration happens after the upgrade completes on the server side.
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers("session-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast("session-1", []byte("hello"))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != "hello" {
		t.Fatalf("unexpected message %q", msg)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.Subscribers("session-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not removed after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
