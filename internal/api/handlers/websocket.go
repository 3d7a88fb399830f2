package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/galton/internal/ws"
)

// HandleSessionWebSocket streams frames and accepts commands over a WebSocket
func HandleSessionWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
