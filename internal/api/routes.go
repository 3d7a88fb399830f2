package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/galton/internal/api/handlers"
	"github.com/playmatatu/galton/internal/config"
	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/middleware"
	"github.com/playmatatu/galton/internal/presets"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, gm *game.SessionManager, store *presets.Store, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(gm))
		v1.GET("/defaults", handlers.GetDefaults(gm))
		v1.GET("/presets", handlers.GetPresets(store))
		v1.GET("/runs", handlers.ListRuns(gm))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(gm, store))
			sessions.GET("/:token", handlers.GetSession(gm))
			sessions.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket())

			control := sessions.Group("/:token", middleware.ControlAuth(cfg))
			{
				control.POST("/start", handlers.StartSession(gm))
				control.POST("/pause", handlers.PauseSession(gm))
				control.POST("/reset", handlers.ResetSession(gm))
				control.PUT("/config", handlers.ConfigureSession(gm))
				control.POST("/resize", handlers.ResizeSession(gm))
			}
		}

		admin := v1.Group("/admin", handlers.AdminAuthMiddleware(db))
		{
			admin.GET("/sessions", handlers.GetAdminSessions(gm))
			admin.DELETE("/sessions/:token", handlers.AdminRemoveSession(db, gm))
			admin.GET("/audit", handlers.GetAdminAuditLogs(db))
			admin.GET("/config", handlers.GetAdminRuntimeConfig(db))
			admin.PUT("/config/:key", handlers.UpdateAdminRuntimeConfig(db, gm))
			admin.POST("/presets/reload", handlers.AdminReloadPresets(db, store, cfg.PresetsFile))
		}
	}
}
