package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/presets"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// parsePaging reads limit/offset query params with sane bounds
func parsePaging(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, game.ErrTooManySessions):
		c.JSON(http.StatusConflict, gin.H{"error": "too many active sessions"})
	case errors.Is(err, presets.ErrPresetNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown preset"})
	case errors.Is(err, game.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is not configured"})
	default:
		log.Printf("[API] Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// mergeControls overlays the set fields of over onto base
func mergeControls(base, over game.Controls) game.Controls {
	if over.BallCount != nil {
		base.BallCount = over.BallCount
	}
	if over.BallSpeed != nil {
		base.BallSpeed = over.BallSpeed
	}
	if over.PegRows != nil {
		base.PegRows = over.PegRows
	}
	if over.BucketCount != nil {
		base.BucketCount = over.BucketCount
	}
	return base
}
