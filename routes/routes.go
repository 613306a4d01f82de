package routes

import (
	"net/http"

	"quizforge/handlers"
	"quizforge/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizTypeHandler *handlers.QuizTypeHandler,
	quizHandler *handlers.QuizHandler,
	gradingHandler *handlers.GradingHandler,
	statsHandler *handlers.StatsHandler,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile and usage counters
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.GET("/user/stats", statsHandler.GetUserStats)

			// Quiz routes
			quiz := protected.Group("/quiz")
			{
				quiz.GET("/quiz-types", quizTypeHandler.ListQuizTypes)
				quiz.POST("/add-quiz-type", quizTypeHandler.AddQuizType)

				quiz.POST("/generate-quiz", quizHandler.GenerateQuiz)
				quiz.POST("/quick-quiz", quizHandler.QuickQuiz)
				quiz.GET("/get-quizzes", quizHandler.GetQuizzes)
				quiz.GET("/get-single-quiz", quizHandler.GetSingleQuiz)
				quiz.GET("/get-chapter-details-by-quiz", quizHandler.ChapterDetails)
				quiz.POST("/toggle-quiz-privacy", quizHandler.ToggleQuizPrivacy)
				quiz.POST("/delete-quiz", quizHandler.DeleteQuiz)

				quiz.GET("/template", quizHandler.Template)
				quiz.GET("/attempt-template", quizHandler.AttemptTemplate)
				quiz.GET("/quiz-content", quizHandler.QuizContent)

				quiz.POST("/submit-quiz", gradingHandler.SubmitQuiz)
				quiz.GET("/marks", gradingHandler.GetMarks)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
