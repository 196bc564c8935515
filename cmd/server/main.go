package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shareit/service-rental/internal/application"
	"github.com/shareit/service-rental/internal/config"
	rentalEvents "github.com/shareit/service-rental/internal/events"
	"github.com/shareit/service-rental/internal/handler"
	"github.com/shareit/service-rental/internal/platform/auth"
	"github.com/shareit/service-rental/internal/platform/database"
	"github.com/shareit/service-rental/internal/platform/health"
	"github.com/shareit/service-rental/internal/platform/kafka"
	"github.com/shareit/service-rental/internal/platform/logger"
	"github.com/shareit/service-rental/internal/platform/metrics"
	"github.com/shareit/service-rental/internal/platform/middleware"
	"github.com/shareit/service-rental/internal/platform/ratelimit"
	"github.com/shareit/service-rental/internal/platform/response"
	"github.com/shareit/service-rental/internal/repository"
)

const serviceName = "service-rental"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("auth_mode", cfg.AuthConfig.Mode),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" || cfg.DBConfig.Driver == "sqlite" {
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize event publisher
	var publisher kafka.Publisher = kafka.NopPublisher{}
	if cfg.KafkaConfig.Enabled {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	// Initialize metrics
	var recorder metrics.Recorder = metrics.NopRecorder{}
	if cfg.MetricsEnabled {
		metrics.Register()
		recorder = metrics.PrometheusRecorder{}
	}

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	requestRepo := repository.NewGormRequestRepository(db)

	// Initialize application services
	clock := application.SystemClock{}

	var jwtManager *auth.JWTManager
	var resolver middleware.ActorResolver = middleware.HeaderResolver{}
	if cfg.AuthConfig.Mode == "jwt" {
		jwtManager = auth.NewJWTManager(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.TokenTTL)
		resolver = middleware.JWTResolver{Manager: jwtManager}
	}

	userService := application.NewUserService(userRepo, jwtManager, clock, log)
	itemService := application.NewItemService(itemRepo, commentRepo, bookingRepo, userRepo, requestRepo, publisher, clock, log)
	bookingService := application.NewBookingService(bookingRepo, itemRepo, userRepo, publisher, recorder, clock, log)
	requestService := application.NewRequestService(requestRepo, itemRepo, userRepo, clock, log)

	// Initialize and start cancellation consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.KafkaConfig.Enabled {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		cancellationConsumer := rentalEvents.NewCancellationConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = cancellationConsumer.Close() }()

		go func() {
			log.Info("starting booking command consumer")
			if err := cancellationConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking command consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.NoRoute(response.RouteNotFound)

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	if cfg.MetricsEnabled {
		router.Use(middleware.MetricsMiddleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimitMiddleware(newLimiter(cfg, log), log))
	}

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	actorMW := middleware.ActorMiddleware(resolver)
	handler.NewUserHandler(userService).RegisterRoutes(&router.RouterGroup, jwtManager != nil)
	handler.NewItemHandler(itemService).RegisterRoutes(&router.RouterGroup, actorMW)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, actorMW)
	handler.NewRequestHandler(requestService).RegisterRoutes(&router.RouterGroup, actorMW)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// newLimiter returns a Redis-backed limiter with an in-memory fallback, or the
// in-memory limiter alone when Redis is disabled.
func newLimiter(cfg *config.ServiceConfig, log *zap.Logger) ratelimit.Limiter {
	memory := ratelimit.NewMemoryLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if !cfg.RedisConfig.Enabled {
		return memory
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	window := cfg.RateLimit.Window
	if window <= 0 {
		window = time.Second
	}
	limit := int(cfg.RateLimit.RPS * window.Seconds())
	if limit < cfg.RateLimit.Burst {
		limit = cfg.RateLimit.Burst
	}
	return ratelimit.NewFailoverLimiter(ratelimit.NewRedisLimiter(client, limit, window), memory, log)
}
