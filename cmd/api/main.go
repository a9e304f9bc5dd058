package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/seatshare/internal/analytics"
	"github.com/richxcame/seatshare/internal/auth"
	"github.com/richxcame/seatshare/internal/bookings"
	"github.com/richxcame/seatshare/internal/drivers"
	"github.com/richxcame/seatshare/internal/earnings"
	"github.com/richxcame/seatshare/internal/reviews"
	"github.com/richxcame/seatshare/internal/rides"
	"github.com/richxcame/seatshare/internal/safety"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/config"
	"github.com/richxcame/seatshare/pkg/database"
	"github.com/richxcame/seatshare/pkg/health"
	"github.com/richxcame/seatshare/pkg/jwtkeys"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/middleware"
	"github.com/richxcame/seatshare/pkg/models"
	"github.com/richxcame/seatshare/pkg/ratelimit"
	"github.com/richxcame/seatshare/pkg/redis"
	"github.com/richxcame/seatshare/pkg/storage"
	"github.com/richxcame/seatshare/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName    = "seatshare-api"
	serviceVersion = "1.0.0"

	readinessCacheTTL = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// handlers groups the HTTP surface of every domain package
type handlers struct {
	auth      *auth.Handler
	rides     *rides.Handler
	drivers   *drivers.Handler
	bookings  *bookings.Handler
	earnings  *earnings.Handler
	reviews   *reviews.Handler
	safety    *safety.Handler
	analytics *analytics.Handler
}

// routerDeps is everything newRouter needs; main builds it from real infrastructure
type routerDeps struct {
	keys       jwtkeys.KeyProvider
	principals middleware.PrincipalResolver
	limiter    *ratelimit.Limiter
	readiness  map[string]func() error
	sentry     bool
	handlers   handlers
}

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	logger.Info("Starting service",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.Server.Environment),
	)

	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Server.Environment,
			Release:          serviceName + "@" + serviceVersion,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		})
		if err != nil {
			logger.Warn("Failed to initialize Sentry, continuing without error reporting", zap.Error(err))
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, serviceName, cfg.Server.Environment)
	if err != nil {
		logger.Warn("Failed to initialize tracing, continuing without it", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("Failed to flush traces", zap.Error(err))
			}
		}()
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(cfg.Database.URL()); err != nil {
			return err
		}
		logger.Info("Database migrations applied")
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(pool)

	readiness := map[string]func() error{
		"database": health.DatabaseChecker(pool),
	}

	// Redis backs the aggregate cache and the rate limiter; both degrade to off without it
	var (
		cacheClient redis.ClientInterface
		limiter     *ratelimit.Limiter
	)
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, aggregate cache and rate limiting disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheClient = redisClient
		limiter = ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit)
		readiness["redis"] = health.RedisChecker(redisClient.Client)
	}

	var documents storage.Storage = storage.Disabled{}
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		documents = s3Store
	} else {
		logger.Warn("Document storage disabled, driver uploads will be rejected")
	}

	keys := jwtkeys.NewProviderFromConfig(cfg.JWT)

	authService := auth.NewService(auth.NewRepository(pool), keys, time.Duration(cfg.JWT.Expiration)*time.Hour)
	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		return err
	}

	earningsService := earnings.NewService(earnings.NewRepository(pool), earnings.NewCache(cacheClient, cfg.Cache))
	rideService := rides.NewService(rides.NewRepository(pool), earningsService, loc)
	driverService := drivers.NewService(drivers.NewRepository(pool), documents, drivers.ServiceConfig{
		MaxFileSizeMB: cfg.Storage.MaxFileSizeMB,
	})
	bookingService := bookings.NewService(bookings.NewRepository(pool), earningsService, bookings.ServiceConfig{
		EditCutoff:      cfg.Booking.EditCutoff(),
		ConflictRetries: cfg.Booking.ConflictRetries,
	})
	reviewService := reviews.NewService(reviews.NewRepository(pool), earningsService)
	safetyService := safety.NewService(safety.NewRepository(pool))
	analyticsService := analytics.NewService(analytics.NewRepository(pool), loc)

	router := newRouter(cfg, routerDeps{
		keys:       keys,
		principals: authService,
		limiter:    limiter,
		readiness:  readiness,
		sentry:     sentryEnabled,
		handlers: handlers{
			auth:      auth.NewHandler(authService),
			rides:     rides.NewHandler(rideService),
			drivers:   drivers.NewHandler(driverService),
			bookings:  bookings.NewHandler(bookingService),
			earnings:  earnings.NewHandler(earningsService),
			reviews:   reviews.NewHandler(reviewService),
			safety:    safety.NewHandler(safetyService),
			analytics: analytics.NewHandler(analyticsService),
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// newRouter assembles middleware, probes and every domain route group
func newRouter(cfg *config.Config, deps routerDeps) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	if deps.sentry {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.Tracing(serviceName))
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Correlation-ID"}
	router.Use(cors.New(corsConfig))

	if cfg.Server.MaxBodyBytes > 0 {
		router.Use(middleware.MaxBodySize(cfg.Server.MaxBodyBytes))
	}

	ready := health.NewCachedChecker(health.CompositeChecker(deps.readiness), readinessCacheTTL)

	router.GET("/healthz", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/live", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/ready", common.HealthCheckWithDeps(serviceName, serviceVersion, map[string]func() error{
		"dependencies": ready.Check,
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1")
	public.Use(middleware.RateLimit(deps.limiter))

	authed := router.Group("/api/v1")
	authed.Use(middleware.AuthMiddlewareWithProvider(deps.keys))
	authed.Use(middleware.ResolvePrincipal(deps.principals))
	authed.Use(middleware.RateLimit(deps.limiter))

	driver := authed.Group("/driver", middleware.RequireRole(models.RoleDriver))
	admin := authed.Group("/admin", middleware.RequireAdmin())

	h := deps.handlers
	h.auth.RegisterRoutes(public, authed, admin)
	h.rides.RegisterRoutes(public, driver)
	h.drivers.RegisterRoutes(driver, admin)
	h.bookings.RegisterRoutes(authed, driver, admin)
	h.earnings.RegisterRoutes(driver)
	h.reviews.RegisterRoutes(authed, driver)
	h.safety.RegisterRoutes(authed, admin)
	h.analytics.RegisterRoutes(admin)

	return router
}
