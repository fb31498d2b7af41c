package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/api/handlers"
	"github.com/studyhive/studyhive-backend/internal/api/middleware"
	"github.com/studyhive/studyhive-backend/internal/config"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/pkg/logger"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Initialize services
	emailService := services.NewEmailService(cfg)
	s3Service := services.NewS3Service(cfg.AWSRegion, cfg.S3Bucket, cfg.AWSAccessKey, cfg.AWSSecretKey)
	authService := services.NewAuthService(db, cfg.JWTSecret, emailService, cfg.FrontendURL)
	schoolService := services.NewSchoolService(db)
	courseService := services.NewCourseService(db)
	resourceService := services.NewResourceService(db)
	reviewService := services.NewReviewService(db)
	voteService := services.NewVoteService(db)
	userService := services.NewUserService(db)
	analyticsService := services.NewAnalyticsService(db)
	aiService := services.NewAIService(db, cfg)
	fileService := services.NewFileService(db, s3Service)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	schoolHandler := handlers.NewSchoolHandler(schoolService)
	courseHandler := handlers.NewCourseHandler(courseService)
	resourceHandler := handlers.NewResourceHandler(resourceService, voteService)
	reviewHandler := handlers.NewReviewHandler(reviewService, voteService)
	userHandler := handlers.NewUserHandler(userService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	aiHandler := handlers.NewAIHandler(aiService)
	fileHandler := handlers.NewFileHandler(fileService)

	authRequired := middleware.AuthMiddleware(db, cfg)
	authOptional := middleware.OptionalAuthMiddleware(db, cfg)
	verified := middleware.RequireVerified()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// API routes
	api := router.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/refresh-token", authHandler.Refresh)
		auth.GET("/me", authRequired, authHandler.Me)
	}

	// School directory (public)
	api.GET("/schools", schoolHandler.ListSchools)

	// Course routes
	courses := api.Group("/courses")
	{
		courses.GET("", authRequired, courseHandler.ListCourses)
		courses.GET("/departments/list", authRequired, courseHandler.ListDepartments)
		courses.GET("/saved/list", authRequired, courseHandler.GetSavedCourses)
		courses.GET("/:courseId", authOptional, courseHandler.GetCourse)
		courses.POST("/:courseId/save", authRequired, courseHandler.SaveCourse)
		courses.DELETE("/:courseId/save", authRequired, courseHandler.UnsaveCourse)
	}

	// Resource routes
	resources := api.Group("/resources")
	{
		resources.GET("/courses/:courseId/flashcards", authOptional, resourceHandler.ListFlashcardSets)
		resources.GET("/courses/:courseId/notes", authOptional, resourceHandler.ListNotes)
		resources.POST("/courses/:courseId/flashcards", authRequired, verified, resourceHandler.CreateFlashcardSet)
		resources.POST("/courses/:courseId/notes", authRequired, verified, resourceHandler.CreateNotes)
		resources.GET("/:resourceId", authOptional, resourceHandler.GetResource)
		resources.PUT("/:resourceId", authRequired, verified, resourceHandler.UpdateResource)
		resources.DELETE("/:resourceId", authRequired, resourceHandler.DeleteResource)
		resources.POST("/:resourceId/upvote", authRequired, resourceHandler.Upvote)
		resources.DELETE("/:resourceId/upvote", authRequired, resourceHandler.RemoveUpvote)
		resources.POST("/:resourceId/increment-usage", resourceHandler.IncrementUsage)
	}

	// Review routes
	reviews := api.Group("/reviews")
	{
		reviews.GET("/courses/:courseId/reviews", authOptional, reviewHandler.ListReviews)
		reviews.GET("/courses/:courseId/stats", reviewHandler.GetCourseStats)
		reviews.POST("/courses/:courseId/reviews", authRequired, verified, reviewHandler.CreateReview)
		reviews.GET("/:reviewId", authOptional, reviewHandler.GetReview)
		reviews.PUT("/:reviewId", authRequired, verified, reviewHandler.UpdateReview)
		reviews.DELETE("/:reviewId", authRequired, reviewHandler.DeleteReview)
		reviews.POST("/:reviewId/helpful", authRequired, reviewHandler.VoteHelpful)
		reviews.DELETE("/:reviewId/helpful", authRequired, reviewHandler.RemoveHelpfulVote)
	}

	// User routes
	users := api.Group("/users", authRequired)
	{
		users.GET("/profile", userHandler.GetProfile)
		users.GET("/reviews", userHandler.GetReviews)
		users.GET("/resources", userHandler.GetResources)
		users.GET("/saved/resources", userHandler.GetSavedResources)
		users.GET("/reputation", userHandler.GetReputation)
		users.GET("/stats", userHandler.GetStats)
		users.POST("/resources/:resourceId/save", userHandler.SaveResource)
		users.DELETE("/resources/:resourceId/save", userHandler.UnsaveResource)
	}

	// Analytics routes
	analytics := api.Group("/analytics", authRequired)
	{
		analytics.GET("/study-stats", analyticsHandler.GetStudyStats)
		analytics.GET("/streak", analyticsHandler.GetStreak)
		analytics.GET("/weak-areas", analyticsHandler.GetWeakAreas)
		analytics.GET("/rank", analyticsHandler.GetRank)
		analytics.GET("/leaderboard", analyticsHandler.GetLeaderboard)
		analytics.GET("/course-insights", analyticsHandler.GetCourseInsights)
	}

	// AI generation routes
	ai := api.Group("/ai", authRequired, verified)
	{
		ai.POST("/generate-flashcards", aiHandler.GenerateFlashcards)
		ai.POST("/resources/:resourceId/generate-flashcards", aiHandler.GenerateFlashcardsFromResource)
		ai.POST("/generate-study-guide", aiHandler.GenerateStudyGuide)
		ai.POST("/generate-quiz", aiHandler.GenerateQuiz)
		ai.POST("/resources/:resourceId/summarize", aiHandler.SummarizeNotes)
	}

	// File routes
	files := api.Group("/files", authRequired)
	{
		files.POST("/:resourceId/upload", fileHandler.UploadFile)
		files.DELETE("/:fileId", fileHandler.DeleteFile)
	}

	logger.Info("Routes initialized successfully")
}
