package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/deadline"
	identityapp "github.com/ngo-pm/backend/internal/application/identity"
	notificationapp "github.com/ngo-pm/backend/internal/application/notification"
	projectapp "github.com/ngo-pm/backend/internal/application/project"
	reportapp "github.com/ngo-pm/backend/internal/application/report"
	"github.com/ngo-pm/backend/internal/infrastructure/auth"
	"github.com/ngo-pm/backend/internal/infrastructure/cache"
	"github.com/ngo-pm/backend/internal/infrastructure/config"
	"github.com/ngo-pm/backend/internal/infrastructure/email"
	"github.com/ngo-pm/backend/internal/infrastructure/logger"
	"github.com/ngo-pm/backend/internal/infrastructure/migration"
	"github.com/ngo-pm/backend/internal/infrastructure/outbox"
	"github.com/ngo-pm/backend/internal/infrastructure/persistence"
	"github.com/ngo-pm/backend/internal/infrastructure/scheduler"
	"github.com/ngo-pm/backend/internal/infrastructure/telemetry"
	"github.com/ngo-pm/backend/internal/interfaces/http/handler"
	"github.com/ngo-pm/backend/internal/interfaces/http/middleware"
	"github.com/ngo-pm/backend/internal/interfaces/http/router"
	"github.com/ngo-pm/backend/migrations"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = providers.BridgeLogger(log, zapcore.InfoLevel)

	log.Info("Starting NGO project tracker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("notification_mode", cfg.Notification.Mode),
		zap.Bool("telemetry", providers.Enabled()),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         providers.Enabled() && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			if cfg.Deadline.DistributedLock {
				log.Fatal("Redis is required for the distributed sweep lock", zap.Error(err))
			}
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
		}
	}

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	reportRepo := persistence.NewGormProgressReportRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRepository(db.DB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, orgRepo, jwtService, blacklist, log)
	memberService := identityapp.NewMemberService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, log)
	orgService := identityapp.NewOrganizationService(orgRepo, userRepo, log)
	projectService := projectapp.NewProjectService(projectRepo, log)
	reportService := reportapp.NewReportService(reportRepo, projectRepo, persistence.NewGormTransactionScope(db.DB), log)

	// Notifications
	gateway, err := email.NewGateway(cfg.Notification, log)
	if err != nil {
		log.Fatal("Failed to create email gateway", zap.Error(err))
	}
	composer, err := email.NewComposerFromConfig(cfg.Notification)
	if err != nil {
		log.Fatal("Failed to load email templates", zap.Error(err))
	}

	metrics, err := telemetry.NewDeadlineMetrics(providers.Meter("ngo-pm/deadline"))
	if err != nil {
		log.Fatal("Failed to create deadline metrics", zap.Error(err))
	}

	var (
		notifier   deadline.Notifier
		dispatcher *outbox.Dispatcher
	)
	if cfg.Notification.Mode == config.NotificationModeOutbox {
		notifier = notificationapp.NewOutboxNotifier(userRepo, orgRepo, composer, deliveryRepo, log,
			cfg.Notification.OutboxMaxRetries)
		dispatcher = outbox.NewDispatcher(deliveryRepo, gateway, outbox.DispatcherConfig{
			BatchSize:        cfg.Notification.OutboxBatchSize,
			PollInterval:     cfg.Notification.OutboxPollInterval,
			CleanupEnabled:   true,
			CleanupRetention: cfg.Notification.OutboxRetention,
		}, log, outbox.WithRecorder(metrics))
	} else {
		notifier = notificationapp.NewBroadcastNotifier(userRepo, orgRepo, composer, gateway, log,
			notificationapp.BroadcastConfig{MaxConcurrency: cfg.Notification.MaxConcurrency})
	}

	// Deadline tracking
	trackerOpts := []deadline.TrackerOption{deadline.WithRecorder(metrics)}
	if cfg.Deadline.DistributedLock {
		lockFactory := cache.NewSweepLockFactory(cfg.Redis, cfg.Deadline.LockTTL,
			cache.WithLogger(log),
			cache.WithRedisClient(redisClient),
			cache.WithInMemoryFallback(false),
		)
		lock, _, err := lockFactory.CreateLock()
		if err != nil {
			log.Fatal("Failed to create sweep lock", zap.Error(err))
		}
		trackerOpts = append(trackerOpts, deadline.WithSweepLock(lock))
	}
	tracker := deadline.NewTracker(projectRepo, notifier, log,
		deadline.TrackerConfig{NotifyTimeout: cfg.Deadline.NotifyTimeout}, trackerOpts...)

	deadlineScheduler := scheduler.NewDeadlineScheduler(tracker, log, scheduler.DeadlineSchedulerConfig{
		Interval:     cfg.Deadline.Interval,
		RunOnStart:   cfg.Deadline.RunOnStart,
		SweepTimeout: cfg.Deadline.SweepTimeout,
	})

	// Background workers stop with this context
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if cfg.Deadline.Enabled {
		if err := deadlineScheduler.Start(workerCtx); err != nil {
			log.Fatal("Failed to start deadline scheduler", zap.Error(err))
		}
	} else {
		log.Warn("Deadline scheduler disabled; sweeps will not run")
	}
	if dispatcher != nil {
		if err := dispatcher.Start(workerCtx); err != nil {
			log.Fatal("Failed to start notification dispatcher", zap.Error(err))
		}
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request ID feeds the request logger, and the span
	// must exist before anything that tags it.
	engine.Use(middleware.RequestID())
	if providers.Enabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName), middleware.SpanEnricher())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	httpMetrics, err := middleware.HTTPMetrics(providers.Meter("ngo-pm/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	readiness := map[string]handler.ReadinessCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		readiness["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, readiness)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)
	engine.GET("/api/v1/system/info", systemHandler.Info)

	guards := router.Guards{
		Auth: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			Validator: jwtService,
			Blacklist: blacklist,
			Logger:    log,
		}),
	}
	if cfg.HTTP.RateLimitEnabled {
		guards.PublicLimit = middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow))
		log.Info("Rate limiting enabled for public endpoints",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Organization: handler.NewOrganizationHandler(orgService),
		Member:       handler.NewMemberHandler(memberService),
		Project:      handler.NewProjectHandler(projectService),
		Report:       handler.NewReportHandler(reportService),
		Deadline:     handler.NewDeadlineHandler(deadlineScheduler),
	}
	if dispatcher != nil {
		handlers.Delivery = handler.NewDeliveryHandler(notificationapp.NewDeliveryService(deliveryRepo, log))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, handlers, guards)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := deadlineScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Deadline scheduler did not stop cleanly", zap.Error(err))
	}
	if dispatcher != nil {
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.Error("Notification dispatcher did not stop cleanly", zap.Error(err))
		}
	}
	stopWorkers()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// applyMigrations brings the schema up to date from the embedded migrations
func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB
	return m.Up()
}
