package handlers

import (
	"net/http"

	"quizforge/logger"
	"quizforge/services"

	"github.com/gin-gonic/gin"
)

type QuizTypeHandler struct {
	typeService *services.QuizTypeService
	log         *logger.Logger
}

func NewQuizTypeHandler(typeService *services.QuizTypeService, log *logger.Logger) *QuizTypeHandler {
	return &QuizTypeHandler{typeService: typeService, log: log}
}

func (h *QuizTypeHandler) ListQuizTypes(c *gin.Context) {
	types, err := h.typeService.List()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(types) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No quiz types found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz_types": types})
}

type addQuizTypeRequest struct {
	TypeName string `json:"type_name" binding:"required"`
}

func (h *QuizTypeHandler) AddQuizType(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req addQuizTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quizType, err := h.typeService.Add(userID, req.TypeName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz type added successfully", "quiz_type": quizType})
}
