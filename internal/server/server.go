// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"gearswap/internal/auth"
	"gearswap/internal/cache"
	"gearswap/internal/config"
	"gearswap/internal/database"
	"gearswap/internal/mailer"
	"gearswap/internal/middleware"
	"gearswap/internal/models"
	"gearswap/internal/notifications"
	"gearswap/internal/repository"
	"gearswap/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens *auth.HSVerifier

	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	likeRepo   repository.LikeRepository
	cartRepo   repository.CartRepository
	outfitRepo repository.OutfitRepository
	searchRepo repository.SearchRepository
	stylerRepo repository.StylerRepository
	resetRepo  repository.ResetRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub

	stylerService *service.StylerService
	resetService  *service.PasswordResetService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.ConnectReadReplica(cfg); err != nil {
		return nil, fmt.Errorf("read replica connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("gearswap-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		cartRepo:       repository.NewCartRepository(db),
		outfitRepo:     repository.NewOutfitRepository(db),
		searchRepo:     repository.NewSearchRepository(db),
		stylerRepo:     repository.NewStylerRepository(db),
		resetRepo:      repository.NewResetRepository(db),
	}

	// Token verification: local HS256 always (it is also the issuer for
	// signup/login); remote JWKS RS256 when a JWKS endpoint is configured.
	server.tokens = auth.NewHSVerifier(cfg.JWTSecret, cfg.JWTAudience)
	verifiers := []auth.Verifier{server.tokens}
	if cfg.JWKSURL != "" {
		verifiers = append(verifiers, auth.NewJWKSVerifier(cfg.JWKSURL, cfg.JWTAudience))
	}
	middleware.InitAuth(auth.NewMultiVerifier(verifiers...))

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}
	server.hub = notifications.NewHub(redisClient)

	var chatClient service.ChatClient
	if cfg.OpenAIAPIKey != "" {
		chatClient = service.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)
	}
	server.stylerService = service.NewStylerService(
		server.likeRepo, server.stylerRepo, server.postRepo,
		chatClient, cfg.FineTunedModelID,
		notifications.NewPusher(server.notifier, server.hub),
	)

	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail)
	}
	server.resetService = service.NewPasswordResetService(
		server.userRepo, server.resetRepo, redisClient, sender, cfg.ResetURL,
	)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/reset/request", middleware.RateLimit(
		s.redis, 3, 15*time.Minute, "reset_request"), s.RequestPasswordReset)
	authGroup.Post("/reset/verify", middleware.RateLimit(
		s.redis, 10, 15*time.Minute, "reset_verify"), s.VerifyPasswordReset)

	// Public browse routes
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/filter", s.FilterPosts)
	publicPosts.Get("/:id/images/:imageId", s.GetPostImage)
	publicPosts.Get("/:id", s.GetPost)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/", s.GetAllUsers)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Post("/:id/follow", s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)
	users.Post("/:id/profile", s.CreateProfile)
	users.Get("/:id/profile", s.GetProfile)
	users.Put("/:id/profile/picture", s.UpdateProfilePicture)
	users.Put("/:id/profile", s.UpdateProfile)
	users.Delete("/:id/profile", s.DeleteProfile)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	// Listing routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/images", s.AddPostImage)
	posts.Delete("/:id/images/:imageId", s.DeletePostImage)
	posts.Post("/:id/sold", s.MarkPostSold)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Likes
	likes := protected.Group("/likedPosts")
	likes.Get("/", s.GetLikedPosts)
	likes.Post("/:postId", s.LikePost)
	likes.Get("/:postId", s.GetLikedPost)
	likes.Delete("/:postId", s.UnlikePost)

	// Cart
	cart := protected.Group("/cart")
	cart.Post("/", s.AddCartItem)
	cart.Get("/", s.GetCart)
	cart.Put("/", s.UpdateCartItem)
	cart.Delete("/:postId", s.RemoveCartItem)

	// Outfits
	outfits := protected.Group("/outfits")
	outfits.Post("/", s.CreateOutfit)
	outfits.Get("/", s.GetOutfits)
	outfits.Post("/:id/items", s.AddOutfitItem)
	outfits.Delete("/:id/items/:postId", s.RemoveOutfitItem)
	outfits.Get("/:id", s.GetOutfit)
	outfits.Put("/:id", s.UpdateOutfit)
	outfits.Delete("/:id", s.DeleteOutfit)

	// Search history
	search := protected.Group("/search")
	search.Post("/", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.AddSearch)
	search.Get("/", s.GetRecentSearches)
	search.Delete("/:id", s.DeleteSearch)

	// Styler
	styler := protected.Group("/styler")
	styler.Post("/chat", middleware.RateLimit(
		s.redis, 10, time.Minute, "styler_chat"), s.StylerChat)
	styler.Get("/chat/history", s.StylerHistory)
	styler.Put("/preferences", s.SaveStylerPreferences)
	styler.Get("/preferences", s.GetStylerPreferences)
	styler.Post("/outfit", middleware.RateLimit(
		s.redis, 10, time.Minute, "styler_outfit"), s.StylerOutfit)
	styler.Post("/item", middleware.RateLimit(
		s.redis, 10, time.Minute, "styler_item"), s.StylerItem)
	styler.Get("/analysis", s.StylerAnalysis)
	styler.Get("/trending", s.StylerTrending)
	styler.Get("/similar/:postId", s.StylerSimilar)

	// WebSocket endpoint: token may arrive via query string on upgrade
	ws := api.Group("/ws", middleware.WebSocketAuthRequired)
	ws.Get("/", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds the Fiber app with middleware and routes configured.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "GearSwap API",
		BodyLimit: 32 * 1024 * 1024, // listings carry inline base64 images
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.NewApp()

	// Wire the hub to the Redis subscriber if available
	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
