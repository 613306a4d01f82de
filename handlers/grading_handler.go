package handlers

import (
	"net/http"

	"quizforge/logger"
	"quizforge/services"

	"github.com/gin-gonic/gin"
)

type GradingHandler struct {
	gradingService *services.GradingService
	log            *logger.Logger
}

func NewGradingHandler(gradingService *services.GradingService, log *logger.Logger) *GradingHandler {
	return &GradingHandler{gradingService: gradingService, log: log}
}

type submitQuizRequest struct {
	Questions services.SubmissionRequest `json:"questions" binding:"required"`
}

func (h *GradingHandler) SubmitQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gradingService.Submit(c.Request.Context(), userID, quizID, &req.Questions)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *GradingHandler) GetMarks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	marks, err := h.gradingService.Marks(userID, quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, marks)
}
