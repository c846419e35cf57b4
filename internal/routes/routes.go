package routes

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/logpulse/backend/internal/controllers"
	"github.com/logpulse/backend/internal/metrics"
	"github.com/logpulse/backend/internal/middleware"
	"github.com/logpulse/backend/internal/risk"
	"github.com/logpulse/backend/internal/services"
	"github.com/logpulse/backend/internal/storage"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, db *gorm.DB, store storage.Store) {
	// Initialize services
	scorer := risk.NewScorer(risk.ParseKeywordSet(os.Getenv("RISK_KEYWORD_SET")))
	historyService := services.NewHistoryService(db, store)
	learningService := services.NewLearningService(store)
	scoringService := services.NewScoringService(db, scorer, historyService, learningService)

	var llmService *services.LLMService
	if os.Getenv("OLLAMA_URL") != "" {
		llmService = services.NewLLMService(
			os.Getenv("OLLAMA_URL"),
			os.Getenv("OLLAMA_MODEL"),
		)
	}
	forecastService := services.NewForecastService(store, historyService, learningService, llmService)

	// Initialize controllers
	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	projectController := controllers.NewProjectController(db)
	logController := controllers.NewLogController(db, scoringService)
	riskController := controllers.NewRiskController(db, scoringService, historyService)
	forecastController := controllers.NewForecastController(db, forecastService)
	feedbackController := controllers.NewFeedbackController(db, learningService)

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/refresh", authController.RefreshToken)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// Users
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.PUT("/me", userController.UpdateCurrentUser)
				users.GET("", userController.GetUsers)
			}

			// Password change requires a valid session
			protected.POST("/auth/change-password", authController.ChangePassword)

			// Preferences for the authenticated user
			protected.GET("/preferences", feedbackController.GetPreferences)
			protected.PUT("/preferences", feedbackController.UpdatePreferences)

			// Projects and everything scoped under one
			projects := protected.Group("/projects")
			{
				projects.POST("", projectController.CreateProject)
				projects.GET("", projectController.GetProjects)
				projects.GET("/:id", projectController.GetProject)
				projects.PUT("/:id", projectController.UpdateProject)
				projects.DELETE("/:id", projectController.DeleteProject)

				// Logs
				projects.POST("/:id/logs", logController.IngestLogs)
				projects.GET("/:id/logs", logController.GetLogs)

				// Risk
				projects.GET("/:id/risk", riskController.GetLatest)
				projects.POST("/:id/risk/rescore", riskController.Rescore)
				projects.GET("/:id/risk/history", riskController.GetHistory)
				projects.GET("/:id/risk/trend", riskController.GetTrend)

				// Forecast
				projects.GET("/:id/forecast", forecastController.GetForecast)

				// Action feedback and learned patterns
				projects.POST("/:id/feedback", feedbackController.AddFeedback)
				projects.GET("/:id/feedback", feedbackController.GetFeedback)
				projects.GET("/:id/patterns", feedbackController.GetLearnedPatterns)
			}
		}
	}
}
