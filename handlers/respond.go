package handlers

import (
	"net/http"

	"quizforge/apierr"
	"quizforge/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps an error to a JSON response. Server-side failures are
// logged and replaced with a generic message so internals never leak.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	apiErr := apierr.From(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "code", apiErr.Code, "error", err)
		c.JSON(apiErr.Status, gin.H{"error": "Server error", "code": apiErr.Code})
		return
	}
	c.JSON(apiErr.Status, gin.H{"error": apiErr.Error(), "code": apiErr.Code})
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
