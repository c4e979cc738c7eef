package main

import (
	"log"

	"github.com/critics-hub/yamdb/internal/audit"
	"github.com/critics-hub/yamdb/internal/broker"
	"github.com/critics-hub/yamdb/internal/config"
	"github.com/critics-hub/yamdb/internal/database"
	"github.com/critics-hub/yamdb/internal/handler"
	"github.com/critics-hub/yamdb/internal/mailer"
	"github.com/critics-hub/yamdb/internal/middleware"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	isProduction := cfg.Environment == "production"
	if err := logger.Init(!isProduction); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	trail, err := audit.NewTrail(cfg.AuditPath)
	if err != nil {
		log.Fatalf("Failed to open audit trail: %v", err)
	}
	defer trail.Close()

	eventBroker, err := broker.NewRedisEventBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize event broker: %v", err)
	}
	defer eventBroker.Close()

	// Confirmation codes go out over SMTP when configured, otherwise to the
	// application log (local development).
	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		sender = mailer.NewLogSender()
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	genreRepo := repository.NewGenreRepository(database.DB)
	titleRepo := repository.NewTitleRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	commentRepo := repository.NewCommentRepository(database.DB)

	// Services
	authService := service.NewAuthService(userRepo, sender, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	userService := service.NewUserService(userRepo, trail)
	catalogService := service.NewCatalogService(categoryRepo, genreRepo, titleRepo, trail)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, eventBroker, trail)
	commentService := service.NewCommentService(commentRepo, reviewRepo, eventBroker, trail)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	titleHandler := handler.NewTitleHandler(catalogService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	feedHandler := handler.NewFeedHandler(eventBroker)
	if err := feedHandler.Run(); err != nil {
		log.Fatalf("Failed to start activity feed: %v", err)
	}

	rateLimiter := middleware.NewRateLimiter(eventBroker.Client(), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(isProduction))
	router.Use(rateLimiter.Middleware())

	api := router.Group("/api/v1")

	// Registration and token exchange
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/token", authHandler.Token)

	// Public reads; the actor is resolved when a token is present so the
	// same routes serve both anonymous and authenticated traffic.
	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	{
		public.GET("/categories", catalogHandler.ListCategories)
		public.GET("/genres", catalogHandler.ListGenres)
		public.GET("/titles", titleHandler.List)
		public.GET("/titles/:title_id", titleHandler.Get)
		public.GET("/titles/:title_id/reviews", reviewHandler.List)
		public.GET("/titles/:title_id/reviews/:review_id", reviewHandler.Get)
		public.GET("/titles/:title_id/reviews/:review_id/comments", commentHandler.List)
		public.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Get)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		authed.GET("/users/me", userHandler.Me)
		authed.PATCH("/users/me", userHandler.UpdateMe)

		authed.POST("/titles/:title_id/reviews", reviewHandler.Create)
		authed.PATCH("/titles/:title_id/reviews/:review_id", reviewHandler.Update)
		authed.DELETE("/titles/:title_id/reviews/:review_id", reviewHandler.Delete)

		authed.POST("/titles/:title_id/reviews/:review_id/comments", commentHandler.Create)
		authed.PATCH("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Update)
		authed.DELETE("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Delete)

		authed.GET("/feed", feedHandler.HandleFeed)
	}

	// Admin routes
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.AdminMiddleware())
	{
		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.GET("/users/:username", userHandler.Get)
		admin.PATCH("/users/:username", userHandler.Update)
		admin.DELETE("/users/:username", userHandler.Delete)

		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.DELETE("/categories/:slug", catalogHandler.DeleteCategory)
		admin.POST("/genres", catalogHandler.CreateGenre)
		admin.DELETE("/genres/:slug", catalogHandler.DeleteGenre)

		admin.POST("/titles", titleHandler.Create)
		admin.PATCH("/titles/:title_id", titleHandler.Update)
		admin.DELETE("/titles/:title_id", titleHandler.Delete)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
