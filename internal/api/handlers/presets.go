package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/galton/internal/admin"
	"github.com/playmatatu/galton/internal/presets"
)

// GetPresets lists the named presets a session can start from
func GetPresets(store *presets.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"presets": store.List()})
	}
}

// AdminReloadPresets re-reads the presets file. A broken file leaves the current set in place.
func AdminReloadPresets(db *sqlx.DB, store *presets.Store, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")
		details := map[string]interface{}{"path": path}

		if err := store.Reload(path); err != nil {
			log.Printf("[ADMIN] Failed to reload presets from %s: %v", path, err)
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "reload_presets", details, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		count := len(store.List())
		details["count"] = count
		log.Printf("[ADMIN] %s reloaded %d presets from %s", adminUsername, count, path)
		admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "reload_presets", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
	}
}
