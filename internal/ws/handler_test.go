package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/galton/internal/config"
	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/middleware"
)

const testSecret = "ws-secret"

func newTestClient(id, session string) *Client {
	return &Client{id: id, sessionToken: session, send: make(chan []byte, 4)}
}

func TestHubRoomsAndBroadcast(t *testing.T) {
	h := NewHub()
	a := newTestClient("a", "s1")
	b := newTestClient("b", "s1")
	c := newTestClient("c", "s2")
	h.addClient(a)
	h.addClient(b)
	h.addClient(c)

	if h.RoomSize("s1") != 2 || h.RoomSize("s2") != 1 {
		t.Fatalf("room sizes s1=%d s2=%d", h.RoomSize("s1"), h.RoomSize("s2"))
	}

	h.BroadcastToSession("s1", map[string]string{"type": "frame"})
	for _, cl := range []*Client{a, b} {
		select {
		case msg := <-cl.send:
			if !strings.Contains(string(msg), `"frame"`) {
				t.Errorf("client %s got %s", cl.id, msg)
			}
		default:
			t.Errorf("client %s got nothing", cl.id)
		}
	}
	select {
	case <-c.send:
		t.Error("client in another session received the broadcast")
	default:
	}

	h.removeClient(a)
	if h.RoomSize("s1") != 1 {
		t.Errorf("room size after leave = %d", h.RoomSize("s1"))
	}
	if _, ok := <-a.send; ok {
		t.Error("send channel should be closed on leave")
	}

	h.removeClient(c)
	if h.RoomSize("s2") != 0 {
		t.Error("empty room should be dropped")
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	cl := &Client{id: "slow", sessionToken: "s", send: make(chan []byte, 1)}
	h.addClient(cl)

	h.BroadcastToSession("s", "one")
	h.BroadcastToSession("s", "two") // must not block

	if len(cl.send) != 1 {
		t.Errorf("buffered = %d, want 1", len(cl.send))
	}
}

func TestRelayBoardEvent(t *testing.T) {
	h := NewHub()
	cl := newTestClient("a", "s1")
	h.addClient(cl)

	relayBoardEvent(h, []byte(`{"type":"landing","session_token":"s1","landings":[{"bucket":2}]}`))
	relayBoardEvent(h, []byte(`{"type":"landing","session_token":"other"}`))
	relayBoardEvent(h, []byte(`not json`))

	if len(cl.send) != 1 {
		t.Fatalf("relayed %d messages, want 1", len(cl.send))
	}
	msg := <-cl.send
	if !strings.Contains(string(msg), `"bucket":2`) {
		t.Errorf("payload altered: %s", msg)
	}
}

func setupServer(t *testing.T) (*httptest.Server, *game.SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		FrameIntervalMs:       1,
		BroadcastEveryFrames:  5,
		DefaultViewportWidth:  800,
		DefaultViewportHeight: 600,
		JWTSecret:             testSecret,
	}
	ctx, cancel := context.WithCancel(context.Background())

	gm := game.NewSessionManager(ctx, nil, nil, cfg)
	gm.SetPublisher(BoardHub)
	game.Manager = gm
	Configure(nil, cfg)

	r := gin.New()
	r.GET("/sessions/:token/ws", HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, gm
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type serverMessage struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(serverMessage) bool) serverMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if match(msg) {
			return msg
		}
	}
}

func TestViewerReceivesFrameButCannotControl(t *testing.T) {
	srv, gm := setupServer(t)
	s, _ := gm.CreateSession(game.SessionOptions{Seed: 1})

	conn := dial(t, srv, "/sessions/"+s.Token+"/ws")
	first := readUntil(t, conn, func(m serverMessage) bool { return true })
	if first.Type != "frame" {
		t.Fatalf("first message type = %s, want frame", first.Type)
	}

	conn.WriteJSON(map[string]string{"type": "start"})
	errMsg := readUntil(t, conn, func(m serverMessage) bool { return m.Type == "error" })
	if !strings.Contains(errMsg.Message, "Control token") {
		t.Errorf("error = %q", errMsg.Message)
	}
	if s.Info().Status != game.StatusStopped {
		t.Error("viewer was able to start the session")
	}
}

func TestControllerDrivesSession(t *testing.T) {
	srv, gm := setupServer(t)
	s, _ := gm.CreateSession(game.SessionOptions{Seed: 2})
	ct, _, err := middleware.IssueControlToken(testSecret, s.Token, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv, "/sessions/"+s.Token+"/ws?ct="+ct)
	readUntil(t, conn, func(m serverMessage) bool { return m.Type == "frame" })

	conn.WriteJSON(map[string]interface{}{"type": "configure", "data": map[string]int{"bucket_count": 7}})
	readUntil(t, conn, func(m serverMessage) bool {
		if m.Type != "frame" {
			return false
		}
		var snap game.Snapshot
		json.Unmarshal(m.Data, &snap)
		return len(snap.Buckets) == 7
	})

	conn.WriteJSON(map[string]string{"type": "start"})
	readUntil(t, conn, func(m serverMessage) bool {
		if m.Type != "frame" {
			return false
		}
		var snap game.Snapshot
		json.Unmarshal(m.Data, &snap)
		return snap.Status == game.StatusRunning && snap.Tick > 0
	})

	conn.WriteJSON(map[string]interface{}{"type": "configure", "data": map[string]int{"bucket_count": 500}})
	readUntil(t, conn, func(m serverMessage) bool { return m.Type == "error" })

	conn.WriteJSON(map[string]string{"type": "pause"})
	deadline := time.Now().Add(5 * time.Second)
	for s.Looping() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Looping() {
		t.Error("frame loop still attached after pause")
	}
}

func TestForeignControlTokenRejected(t *testing.T) {
	srv, gm := setupServer(t)
	a, _ := gm.CreateSession(game.SessionOptions{})
	b, _ := gm.CreateSession(game.SessionOptions{})
	ct, _, _ := middleware.IssueControlToken(testSecret, b.Token, time.Hour)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + a.Token + "/ws?ct=" + ct
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != 403 {
		t.Errorf("resp = %+v, want 403", resp)
	}
}
