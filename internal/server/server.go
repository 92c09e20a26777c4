// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"soundmap/internal/config"
	"soundmap/internal/database"
	"soundmap/internal/kv"
	"soundmap/internal/middleware"
	"soundmap/internal/models"
	"soundmap/internal/ratelimit"
	"soundmap/internal/repository"
	"soundmap/internal/service"
	"soundmap/internal/session"
	"soundmap/internal/storage"

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

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	followRepo  repository.FollowRepository
	commentRepo repository.CommentRepository

	sessions    *session.Store
	sessionAuth *middleware.SessionAuth
	limiter     *ratelimit.Limiter

	authService   *service.AuthService
	feedService   *service.FeedService
	socialService *service.SocialService
	postService   *service.PostService
	uploadService *service.UploadService
}

// NewServer creates a server instance, establishing the database, Redis and
// object store connections from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := kv.ConnectRedis(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	store, err := newObjectStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("object store setup failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and bootstrap layers use this to substitute in-memory backends.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	var kvStore kv.Store
	if redisClient != nil {
		kvStore = kv.NewRedisStore(redisClient)
	} else {
		return nil, fmt.Errorf("redis client is required")
	}

	sessions := session.NewStore(kvStore, time.Duration(cfg.SessionTTLHours)*time.Hour)
	rateLimiter := ratelimit.NewLimiter(kvStore)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("soundmap-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		followRepo:     followRepo,
		commentRepo:    commentRepo,
		sessions:       sessions,
		limiter:        rateLimiter,
	}

	server.sessionAuth = &middleware.SessionAuth{
		Store:  sessions,
		Cookie: server.cookieConfig(),
		LookupUser: func(ctx context.Context, userID string) (bool, error) {
			user, err := userRepo.GetByID(ctx, userID)
			if err != nil {
				return false, err
			}
			return user != nil, nil
		},
	}

	server.authService = service.NewAuthService(userRepo, sessions)
	server.feedService = service.NewFeedService(postRepo, followRepo)
	server.socialService = service.NewSocialService(userRepo, followRepo, postRepo)
	server.postService = service.NewPostService(postRepo, commentRepo, userRepo)
	server.uploadService = service.NewUploadService(store, rateLimiter, cfg)

	return server, nil
}

func (s *Server) cookieConfig() session.CookieConfig {
	return session.CookieConfig{
		Name:   s.config.SessionCookieName,
		Secure: s.config.CookieSecure,
		MaxAge: time.Duration(s.config.SessionTTLHours) * time.Hour,
	}
}

func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.AudioStorage == "s3" {
		return storage.NewS3Store(context.Background(), storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStore(cfg.AudioUploadDir)
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded audio is public once posted.
	app.Get("/audio/:filename", s.ServeAudio)

	requireAuth := s.sessionAuth.RequireAuth()
	optionalAuth := s.sessionAuth.OptionalAuth()

	auth := api.Group("/auth")
	auth.Post("/register", s.limiter.Middleware("register",
		ratelimit.Policy{MaxRequests: 3, Window: 10 * time.Minute}), s.Register)
	auth.Post("/login", s.limiter.Middleware("login",
		ratelimit.Policy{MaxRequests: 10, Window: 5 * time.Minute}), s.Login)
	auth.Post("/logout", s.Logout)
	api.Get("/me", requireAuth, s.GetMe)

	api.Get("/timeline", requireAuth, s.GetTimeline)
	api.Get("/map", optionalAuth, s.GetMapPosts)

	api.Get("/profile/:username", optionalAuth, s.GetProfile)
	api.Post("/profile/:username/follow", requireAuth, s.ToggleFollow)

	posts := api.Group("/posts")
	posts.Post("/", requireAuth, s.CreatePost)
	posts.Get("/:id", optionalAuth, s.GetPost)
	posts.Post("/:id/like", requireAuth, s.ToggleLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", requireAuth, s.limiter.Middleware("create_comment",
		ratelimit.Policy{MaxRequests: 15, Window: time.Minute}), s.CreateComment)
}

// HealthCheck is a simple alias for ReadinessCheck.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis are reachable.
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
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "SoundMap API",
		BodyLimit: (s.config.AudioMaxUploadSizeMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			slog.ErrorContext(c.UserContext(), "unhandled handler error", "error", err)
			return models.RespondWithError(c, models.StatusForError(err), err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	slog.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "error", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
