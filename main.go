package main

import (
	"log"

	"quizforge/config"
	"quizforge/handlers"
	"quizforge/llm"
	"quizforge/logger"
	"quizforge/middleware"
	"quizforge/models"
	"quizforge/routes"
	"quizforge/services"
	"quizforge/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", "error", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Book{},
		&models.Chapter{},
		&models.QuizType{},
		&models.Quiz{},
		&models.QuizContent{},
		&models.StudentMarks{},
		&models.UserStats{},
	)
	if err != nil {
		zlog.Fatal("failed to migrate database", "error", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// External collaborators
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, zlog)
	fileStore, err := storage.NewFSStore(cfg.StorageDir)
	if err != nil {
		zlog.Fatal("failed to initialize document storage", "error", err)
	}

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	typeService := services.NewQuizTypeService(db)
	statsService := services.NewStatsService(db, redisClient, zlog)
	quizService := services.NewQuizService(db, typeService, llmClient, fileStore, statsService, zlog)
	templateService := services.NewTemplateService(db, typeService)
	gradingService := services.NewGradingService(db, typeService, llmClient, zlog)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, zlog)
	quizTypeHandler := handlers.NewQuizTypeHandler(typeService, zlog)
	quizHandler := handlers.NewQuizHandler(quizService, templateService, zlog)
	gradingHandler := handlers.NewGradingHandler(gradingService, zlog)
	statsHandler := handlers.NewStatsHandler(statsService, zlog)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, quizTypeHandler, quizHandler, gradingHandler, statsHandler, cfg.JWTSecret)

	// Start server
	zlog.Info("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", "error", err)
	}
}
