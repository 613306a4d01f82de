package handlers

import (
	"net/http"

	"quizforge/logger"
	"quizforge/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuizHandler struct {
	quizService     *services.QuizService
	templateService *services.TemplateService
	log             *logger.Logger
}

func NewQuizHandler(quizService *services.QuizService, templateService *services.TemplateService, log *logger.Logger) *QuizHandler {
	return &QuizHandler{
		quizService:     quizService,
		templateService: templateService,
		log:             log,
	}
}

// quizIDParam validates the quiz_id query parameter as a UUID.
func quizIDParam(c *gin.Context) (string, bool) {
	quizID := c.Query("quiz_id")
	if quizID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quiz ID is required"})
		return "", false
	}
	if _, err := uuid.Parse(quizID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID format"})
		return "", false
	}
	return quizID, true
}

func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.GenerateQuiz(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Quiz generated successfully", "quiz_id": quiz.QuizID})
}

func (h *QuizHandler) QuickQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	fileHeaders := form.File["chapter_files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one chapter file is required"})
		return
	}

	files := make([]services.QuickQuizFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer f.Close()
		files = append(files, services.QuickQuizFile{Name: fh.Filename, Reader: f})
	}

	quiz, err := h.quizService.QuickQuiz(c.Request.Context(), userID, files)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quiz generated successfully and chapters deleted",
		"quiz_id": quiz.QuizID,
	})
}

func (h *QuizHandler) GetQuizzes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	lists, err := h.quizService.GetQuizzes(userID, c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}

func (h *QuizHandler) GetSingleQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetSingleQuiz(userID, quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz details retrieved successfully", "quiz": quiz})
}

func (h *QuizHandler) ToggleQuizPrivacy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	isPrivate, err := h.quizService.TogglePrivacy(userID, quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	visibility := "Public"
	if isPrivate {
		visibility = "Private"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Your quiz is now " + visibility,
		"is_private": isPrivate,
	})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.quizService.DeleteQuiz(userID, quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully", "deleted_quiz_contents": deleted})
}

func (h *QuizHandler) ChapterDetails(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	details, err := h.quizService.ChapterDetails(quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz_id": quizID, "chapter_details": details})
}

// Template returns the authoring view, answers and explanations included.
func (h *QuizHandler) Template(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	groups, err := h.templateService.Template(quizID, true)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": groups})
}

// AttemptTemplate returns the student view: prompts, difficulties and
// options only.
func (h *QuizHandler) AttemptTemplate(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	groups, err := h.templateService.Template(quizID, false)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": groups})
}

func (h *QuizHandler) QuizContent(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	content, err := h.templateService.QuizContent(quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, content)
}
