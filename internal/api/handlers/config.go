package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/galton/internal/game"
)

type sliderRange struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

// GetDefaults returns the reset settings and slider ranges the frontend needs
func GetDefaults(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := gm.Config()
		defaults := game.DefaultSettings(float64(cfg.DefaultViewportWidth), float64(cfg.DefaultViewportHeight))
		c.JSON(http.StatusOK, gin.H{
			"settings":          defaults,
			"render_radius":     defaults.RenderRadius(),
			"frame_interval_ms": cfg.FrameIntervalMs,
			"ranges": gin.H{
				"ball_count":   sliderRange{Min: 1, Max: 10000, Step: 100},
				"ball_speed":   sliderRange{Min: 1, Max: 20, Step: 1},
				"peg_rows":     sliderRange{Min: 0, Max: 30, Step: 1},
				"bucket_count": sliderRange{Min: 1, Max: 60, Step: 1},
			},
		})
	}
}
