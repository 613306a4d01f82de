package handlers

import (
	"net/http"

	"quizforge/logger"
	"quizforge/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
	log          *logger.Logger
}

func NewStatsHandler(statsService *services.StatsService, log *logger.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, log: log}
}

// GetUserStats serves the caller's usage counters, preferring the cached
// snapshot over a database read.
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stats, err := h.statsService.Cached(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
