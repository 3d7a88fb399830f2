package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/galton/internal/game"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := 0
		if gm != nil {
			sessions = gm.ActiveSessionCount()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "galton-api",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"sessions": sessions,
		})
	}
}
