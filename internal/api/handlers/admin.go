package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/galton/internal/admin"
	"github.com/playmatatu/galton/internal/game"
)

// AdminAuthMiddleware checks the X-Admin-Username / X-Admin-Token pair against the
// admin_accounts table and sets admin_username in context
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API requires a database"})
			return
		}

		username := strings.TrimSpace(c.GetHeader("X-Admin-Username"))
		token := c.GetHeader("X-Admin-Token")
		if username == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		acc, err := admin.ValidateAdmin(db, username, token)
		if err != nil {
			admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "auth", nil, false)
			if errors.Is(err, admin.ErrAdminNotFound) || errors.Is(err, admin.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set("admin_username", acc.Username)
		c.Next()
	}
}

// GetAdminSessions lists every live session on this instance
func GetAdminSessions(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := gm.ListSessions()
		c.Header("X-Session-Count", strconv.Itoa(len(sessions)))
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
	}
}

// AdminRemoveSession stops a session, records its run and forgets it
func AdminRemoveSession(db *sqlx.DB, gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")
		token := c.Param("token")

		if err := gm.RemoveSession(token); err != nil {
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "remove_session", map[string]interface{}{"token": token}, false)
			respondError(c, err)
			return
		}

		log.Printf("[ADMIN] %s removed session %s", adminUsername, token)
		admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "remove_session", map[string]interface{}{"token": token}, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
