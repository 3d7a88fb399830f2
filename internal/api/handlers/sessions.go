package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/middleware"
	"github.com/playmatatu/galton/internal/models"
	"github.com/playmatatu/galton/internal/presets"
)

type createSessionRequest struct {
	Preset string  `json:"preset"`
	Width  float64 `json:"width" binding:"omitempty,min=1,max=8192"`
	Height float64 `json:"height" binding:"omitempty,min=1,max=8192"`
	Seed   int64   `json:"seed"`
	game.Controls
}

type resizeRequest struct {
	Width  float64 `json:"width" binding:"required,min=1,max=8192"`
	Height float64 `json:"height" binding:"required,min=1,max=8192"`
}

// CreateSession builds a new board and hands back the token that controls it
func CreateSession(gm *game.SessionManager, store *presets.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSessionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		controls := req.Controls
		if req.Preset != "" {
			p, err := store.Get(req.Preset)
			if err != nil {
				respondError(c, err)
				return
			}
			controls = mergeControls(p.Controls, req.Controls)
		}

		s, err := gm.CreateSession(game.SessionOptions{
			Width:    req.Width,
			Height:   req.Height,
			Seed:     req.Seed,
			Controls: controls,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		cfg := gm.Config()
		ttl := time.Duration(cfg.ControlTokenTTLMinutes) * time.Minute
		controlToken, exp, err := middleware.IssueControlToken(cfg.JWTSecret, s.Token, ttl)
		if err != nil {
			log.Printf("[API] Failed to issue control token for %s: %v", s.Token, err)
			gm.RemoveSession(s.Token)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Session-Token", s.Token)
		c.JSON(http.StatusCreated, gin.H{
			"token":              s.Token,
			"control_token":      controlToken,
			"control_expires_at": exp.Format(time.RFC3339),
			"snapshot":           s.Snapshot(),
		})
	}
}

// GetSession returns the current frame of a session
func GetSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := gm.GetSession(c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// sessionCommand wraps a manager command that only needs the session token
func sessionCommand(command func(token string) (*game.Session, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := command(c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// StartSession starts or resumes the frame loop
func StartSession(gm *game.SessionManager) gin.HandlerFunc {
	return sessionCommand(gm.Start)
}

// PauseSession stops the frame loop and records the run
func PauseSession(gm *game.SessionManager) gin.HandlerFunc {
	return sessionCommand(gm.Pause)
}

// ResetSession clears the board and restores defaults
func ResetSession(gm *game.SessionManager) gin.HandlerFunc {
	return sessionCommand(gm.Reset)
}

// ConfigureSession applies slider changes
func ConfigureSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var controls game.Controls
		if err := c.ShouldBindJSON(&controls); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if controls.IsEmpty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no controls given"})
			return
		}

		s, err := gm.Configure(c.Param("token"), controls)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// ResizeSession re-initializes the board for a new viewport
func ResizeSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s, err := gm.Resize(c.Param("token"), req.Width, req.Height)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

// ListRuns pages recorded runs, optionally for one session
func ListRuns(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := parsePaging(c)

		var err error
		var runs []models.BoardRun
		if token := c.Query("session"); token != "" {
			runs, err = gm.ListRunsForSession(token, limit, offset)
		} else {
			runs, err = gm.ListRuns(limit, offset)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs, "limit": limit, "offset": offset})
	}
}
