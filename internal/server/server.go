// Package server contains the HTTP handlers for the crawling and community API.
package server

import (
	"context"
	"fmt"
	"time"

	"careerhub/internal/bootstrap"
	"careerhub/internal/cache"
	"careerhub/internal/config"
	"careerhub/internal/featureflags"
	"careerhub/internal/ingest"
	"careerhub/internal/listing"
	"careerhub/internal/middleware"
	"careerhub/internal/repository"
	"careerhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
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
	search         repository.SearchStore
	runtime        *bootstrap.Runtime
	promMiddleware *fiberprometheus.FiberPrometheus
	registry       *listing.Registry
	featureFlags   *featureflags.Manager

	userRepo repository.UserRepository

	communityService *service.CommunityService
	listingService   *service.ListingService
	keywordService   *service.KeywordService
	ingestService    *service.IngestService
	consumer         *ingest.Consumer
}

// NewServer connects every backing service and builds the server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{Search: true, NATS: true, Name: "careerhub-api"})
	if err != nil {
		return nil, err
	}

	server, err := NewServerWithDeps(cfg, rt.DB, rt.Redis, repository.NewSearchStore(rt.Search))
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	server.runtime = rt
	if rt.NATS != nil && server.featureFlags.Enabled(featureflags.IngestConsumer, 0) {
		server.consumer = ingest.NewConsumer(rt.NATS, server.ingestService)
	}
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the connections.
// A nil search store disables the search-backed categories.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, search repository.SearchStore) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	middleware.InitMiddleware(cfg)

	registry := listing.NewRegistry(listing.Options{QnetImage: cfg.QnetImage})
	userRepo := repository.NewUserRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	examRepo := repository.NewExamRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		search:         search,
		promMiddleware: middleware.InitMetrics("careerhub-api"),
		registry:       registry,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
	}

	var searchStore repository.ListingStore
	var indexer repository.SearchIndexer
	if search != nil {
		searchStore, indexer = search, search
	}

	server.communityService = service.NewCommunityService(repository.NewCommunityRepository(db), userRepo)
	server.listingService = service.NewListingService(
		registry,
		searchStore,
		repository.NewSQLStore(db),
		keywordRepo,
		server.communityService,
		cache.NewReadThrough(redisClient),
		cfg.RandomPickTTL(),
	)
	server.keywordService = service.NewKeywordService(keywordRepo, userRepo, registry)
	server.ingestService = service.NewIngestService(registry, indexer, examRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request and user IDs into the request context.
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before the limiter so that rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "CareerHub Backend Metrics Dashboard",
	}))

	// Community board. Specific routes come before the generic /:id routes.
	community := api.Group("/community")
	community.Get("/", s.GetCommunities)
	community.Post("/create", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_community"), s.CreateCommunity)
	community.Post("/comments/:commentId/like", middleware.AuthRequired, s.LikeComment)
	community.Get("/:id", middleware.AuthRequired, s.GetCommunity)
	community.Post("/:id/like", middleware.AuthRequired, s.LikeCommunity)
	community.Post("/:id/comments", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)

	// Crawled listings.
	crawling := api.Group("/crawling")
	crawling.Get("/random", s.requireFlag(featureflags.RandomPick), s.GetRandomListings)
	crawling.Get("/:path/best", s.listingGate, s.GetBestListings)
	crawling.Get("/:path/mine", middleware.AuthRequired, s.requireFlag(featureflags.KeywordFeed),
		s.listingGate, s.GetMyListings)
	crawling.Get("/:path/:id", s.listingGate, s.GetListing)
	crawling.Get("/:path", s.listingGate, s.GetListings)

	users := api.Group("/users", middleware.AuthRequired)
	users.Get("/me/feature-flags", s.GetMyFeatureFlags)
	users.Get("/me/keywords/:path", s.GetMyKeywords)
	users.Put("/me/keywords/:path", s.UpdateMyKeywords)
}

// StartIngest subscribes to the crawling subjects when NATS is configured.
func (s *Server) StartIngest(ctx context.Context) error {
	if s.consumer == nil {
		return nil
	}
	return s.consumer.Start(ctx)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; the
// database and, when configured, the search index are required.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	searchStatus := "unavailable"
	if s.runtime != nil && s.runtime.MongoClient != nil {
		searchStatus = "healthy"
		if err := s.runtime.MongoClient.Ping(ctx, nil); err != nil {
			searchStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || searchStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"search":   searchStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown stops the ingest consumer and closes the connections opened by NewServer.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.consumer != nil {
		s.consumer.Stop()
	}
	if s.runtime != nil {
		return s.runtime.Close(ctx)
	}
	return nil
}
