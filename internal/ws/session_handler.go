package ws

import (
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/middleware"
)

// ResizeData is the payload of a resize command
type ResizeData struct {
	Width  float64 `json:"width" binding:"required,min=1,max=8192"`
	Height float64 `json:"height" binding:"required,min=1,max=8192"`
}

// BoardHub is the single hub for all sessions.
var BoardHub *Hub

func init() {
	BoardHub = NewHub()
	go BoardHub.Run()
}

func newClientID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// HandleWebSocket attaches a viewer to a session. A valid control token in the
// `ct` query parameter also allows the client to send commands.
func HandleWebSocket(c *gin.Context) {
	sessionToken := c.Param("token")
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "simulation not ready"})
		return
	}

	s, err := game.Manager.GetSession(sessionToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	canControl := false
	if ct := c.Query("ct"); ct != "" {
		if wsConfig == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "control tokens not configured"})
			return
		}
		owner, err := middleware.ParseControlToken(wsConfig.JWTSecret, ct)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid control token"})
			return
		}
		if owner != sessionToken {
			c.JSON(http.StatusForbidden, gin.H{"error": "control token is for another session"})
			return
		}
		canControl = true
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		id:           newClientID(),
		sessionToken: sessionToken,
		canControl:   canControl,
		send:         make(chan []byte, sendBuffer),
	}

	// Current frame goes out first so a new viewer never waits for the loop.
	if data, err := json.Marshal(frameMessage(s.Snapshot())); err == nil {
		client.send <- data
	}

	BoardHub.register <- client

	go client.writePump()
	go client.readPump()
}

func frameMessage(snap game.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"type": "frame",
		"data": snap,
	}
}

// readPump reads commands from the client until the connection drops.
func (c *Client) readPump() {
	defer func() {
		BoardHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) sendError(message string) {
	BoardHub.sendToClient(c, map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// handleMessage runs one client command against the session.
func (c *Client) handleMessage(msg WSMessage) {
	if msg.Type == "get_state" {
		s, err := game.Manager.GetSession(c.sessionToken)
		if err != nil {
			c.sendError("Session not found")
			return
		}
		BoardHub.sendToClient(c, frameMessage(s.Snapshot()))
		return
	}

	if !c.canControl {
		c.sendError("Control token required")
		return
	}

	var err error
	switch msg.Type {
	case "start":
		_, err = game.Manager.Start(c.sessionToken)

	case "pause":
		_, err = game.Manager.Pause(c.sessionToken)

	case "reset":
		_, err = game.Manager.Reset(c.sessionToken)

	case "configure":
		var controls game.Controls
		if err := decodeAndValidate(msg.Data, &controls); err != nil {
			c.sendError("Invalid controls: " + err.Error())
			return
		}
		if controls.IsEmpty() {
			c.sendError("No controls given")
			return
		}
		_, err = game.Manager.Configure(c.sessionToken, controls)

	case "resize":
		var data ResizeData
		if err := decodeAndValidate(msg.Data, &data); err != nil {
			c.sendError("Invalid size: " + err.Error())
			return
		}
		_, err = game.Manager.Resize(c.sessionToken, data.Width, data.Height)

	default:
		c.sendError("Unknown message type")
		return
	}

	if err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			c.sendError("Session not found")
			return
		}
		c.sendError(err.Error())
	}
}

// decodeAndValidate applies the same binding rules the HTTP handlers use.
func decodeAndValidate(raw json.RawMessage, obj interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing data")
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
