package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	collectionsapp "github.com/inmobiliaria/backend/internal/application/collections"
	leaseapp "github.com/inmobiliaria/backend/internal/application/lease"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
	"github.com/inmobiliaria/backend/internal/application/notification"
	reportapp "github.com/inmobiliaria/backend/internal/application/report"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/auth"
	"github.com/inmobiliaria/backend/internal/infrastructure/cache"
	"github.com/inmobiliaria/backend/internal/infrastructure/config"
	"github.com/inmobiliaria/backend/internal/infrastructure/event"
	"github.com/inmobiliaria/backend/internal/infrastructure/logger"
	"github.com/inmobiliaria/backend/internal/infrastructure/migration"
	"github.com/inmobiliaria/backend/internal/infrastructure/notify"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence"
	"github.com/inmobiliaria/backend/internal/infrastructure/scheduler"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"github.com/inmobiliaria/backend/internal/interfaces/http/handler"
	"github.com/inmobiliaria/backend/internal/interfaces/http/middleware"
	"github.com/inmobiliaria/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/inmobiliaria/backend/docs"
)

//	@title			Inmobiliaria Ledger API
//	@version		1.0
//	@description	Lease contracts, rent charges, payments, aging and collections for property rentals
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// Health routes stay out of access logs and traces
var quietRoutes = []string{"/health", "/ready"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tel, err := startTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer tel.shutdown(log)
	log = tel.logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("timezone", cfg.Ledger.Location().String()),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, tel.meter, log); err != nil {
		return err
	}
	if cfg.Database.MigrateOnStart {
		if err := migrate(ctx, db, cfg.Database.MigrationsPath, log); err != nil {
			return err
		}
	}
	log.Info("Database connected")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	clock := shared.NewSystemClock(cfg.Ledger.Location())

	// Event bus: collections mirror, projections, notifications and ledger metrics
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	contractRepo := persistence.NewGormContractRepository(db.DB)
	chargeRepo := persistence.NewGormChargeRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	applicationRepo := persistence.NewGormPaymentApplicationRepository(db.DB)
	accountRepo := persistence.NewGormDelinquentAccountRepository(db.DB)
	followUpRepo := persistence.NewGormFollowUpRepository(db.DB)
	projectionRepo := persistence.NewGormProjectionRepository(db.DB)
	parties := persistence.NewGormPartyDirectory(db.DB)

	mirror := collectionsapp.NewChargePaymentHandler(accountRepo, clock, log)
	bus.Subscribe(mirror, mirror.EventTypes()...)

	projections := collectionsapp.NewProjectionService(projectionRepo, chargeRepo, clock,
		collectionsapp.ServiceConfig{MaxAttempts: cfg.Ledger.MaxAttempts}, log)
	projector := collectionsapp.NewChargeProjectionHandler(projections, chargeRepo, log)
	bus.Subscribe(projector, projector.EventTypes()...)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(tel.meter)
	if err != nil {
		return err
	}
	bus.Subscribe(ledgerMetrics, ledgerMetrics.EventTypes()...)

	if cfg.Notification.Enabled {
		notifier, err := notify.New(cfg.Notification, redisClient, log)
		if err != nil {
			return err
		}
		store := cache.NewIdempotencyStore(redisClient, log)
		defer func() { _ = store.Close() }()
		notifications := event.NewIdempotentHandler(
			notification.NewHandler(notifier, log), store, log,
			event.WithScope("notification"),
			event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Notification.IdempotencyTTL, Enabled: true}),
		)
		bus.Subscribe(notifications, notifications.EventTypes()...)
	}

	retries := cfg.Ledger.MaxAttempts
	contracts := leaseapp.NewContractService(contractRepo, parties,
		persistence.NewGormLeaseTransactionScope(db.DB), clock, log)
	charges := ledgerapp.NewChargeService(contractRepo, chargeRepo,
		persistence.NewGormLedgerTransactionScope(db.DB), clock, ledgerapp.ServiceConfig{MaxAttempts: retries}, log)
	payments := ledgerapp.NewPaymentService(paymentRepo, applicationRepo,
		persistence.NewGormLedgerTransactionScope(db.DB), clock, ledgerapp.ServiceConfig{MaxAttempts: retries}, log)
	aging := ledgerapp.NewAgingService(contractRepo, chargeRepo, clock, log)
	collections := collectionsapp.NewCollectionsService(accountRepo, followUpRepo, chargeRepo, contractRepo,
		persistence.NewGormCollectionsTransactionScope(db.DB), clock, collectionsapp.ServiceConfig{MaxAttempts: retries}, log)
	statements := reportapp.NewStatementService(contractRepo, chargeRepo, paymentRepo, clock, log)

	contracts.SetEventPublisher(bus)
	charges.SetEventPublisher(bus)
	payments.SetEventPublisher(bus)
	collections.SetEventPublisher(bus)

	// Batch jobs
	jobRepo := scheduler.NewJobRepository(db.DB)
	jobs, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		QueueSize:         100,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, scheduler.NewLedgerJobExecutor(contracts, charges, collections, clock, log), jobRepo, log)
	if err != nil {
		return err
	}
	if err := jobs.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = jobs.Stop(context.Background()) }()

	cron, err := scheduler.NewDailyCycleCron(cfg.Scheduler.DailyCronSchedule, cfg.Scheduler.Enabled,
		cfg.Scheduler.RetryAttempts, jobs, clock, log)
	if err != nil {
		return err
	}
	if err := cron.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = cron.Stop(context.Background()) }()

	// HTTP
	jwtService := auth.NewJWTService(cfg.JWT)
	var revocations auth.RevocationList = auth.NewMemoryRevocationList()
	if redisClient != nil {
		revocations = auth.NewRedisRevocationList(redisClient)
	}

	engine, err := newEngine(ctx, cfg, log, tel, redisClient)
	if err != nil {
		return err
	}
	health := handler.NewHealthHandler(cfg.App.Name, version, readinessChecks(db, redisClient))
	engine.GET("/health", health.Health)
	engine.GET("/ready", health.Ready)

	jwtAuth := middleware.JWTAuth(middleware.JWTConfig{
		Validator:   jwtService,
		Revocations: revocations,
		Logger:      log,
	})
	if cfg.Docs.Enabled {
		guard := middleware.DocsGuardConfig{AllowedIPs: cfg.Docs.AllowedIPs}
		if cfg.Docs.RequireAuth {
			guard.Auth = jwtAuth
		}
		engine.GET("/swagger/*any", middleware.DocsGuard(guard), ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Info("API docs served at /swagger/index.html",
			zap.Bool("require_auth", cfg.Docs.RequireAuth),
			zap.Strings("allowed_ips", cfg.Docs.AllowedIPs))
	}

	api := router.NewRouter(engine, router.WithAPIVersion("v1"))
	api.Use(jwtAuth, middleware.SpanIdentity())
	api.Register(router.LedgerGroups(router.Handlers{
		Contracts:   handler.NewContractHandler(contracts, charges),
		Charges:     handler.NewChargeHandler(charges),
		Payments:    handler.NewPaymentHandler(payments),
		Collections: handler.NewCollectionsHandler(collections),
		Projections: handler.NewProjectionHandler(projections),
		Reports:     handler.NewReportHandler(aging, statements),
		Scheduler:   handler.NewSchedulerHandler(jobs, cron, jobRepo, cfg.Scheduler.RetryAttempts),
	})...)
	api.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newEngine builds the gin engine with the middleware every route shares
func newEngine(ctx context.Context, cfg *config.Config, log *zap.Logger, tel *telemetryStack, rdb *redis.Client) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(tel.meter)
	if err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log, quietRoutes...),
		middleware.Tracing(cfg.Telemetry.ServiceName, nil, quietRoutes...),
		httpMetrics,
		middleware.ProfileLabels(),
		middleware.Secure(cfg.App.Env == "production"),
		middleware.CORS(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter
		if rdb != nil {
			limiter = middleware.NewRedisLimiter(rdb, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			mem := middleware.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
			go mem.RunSweeper(ctx)
			limiter = mem
		}
		engine.Use(middleware.RateLimit(limiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}
	return engine, nil
}

func readinessChecks(db *persistence.Database, rdb *redis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"database": db}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return checks
}

func migrate(ctx context.Context, db *persistence.Database, path string, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, path, log)
	if err != nil {
		return err
	}
	// Close would close sqlDB as well, which the service keeps using.
	return m.Up(ctx)
}

// telemetryStack holds the OpenTelemetry providers and the profiler
type telemetryStack struct {
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LogProvider
	profiler *telemetry.Profiler
	meter    metric.Meter
}

func startTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryStack, error) {
	t := cfg.Telemetry
	base := telemetry.Config{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		SamplingRatio:     t.SamplingRatio,
		ServiceName:       t.ServiceName,
		ServiceVersion:    version,
		Insecure:          t.Insecure,
		SpanProfiles:      t.ProfilingEnabled && t.SpanProfiles,
	}
	stack := &telemetryStack{}

	var err error
	if stack.profiler, err = telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         t.ProfilingEnabled,
		ServerAddress:   t.ProfilerAddress,
		ApplicationName: t.ServiceName,
	}, log); err != nil {
		return nil, err
	}
	if stack.tracer, err = telemetry.InitTracer(ctx, base, log); err != nil {
		return nil, err
	}

	metricsCfg := base
	metricsCfg.Enabled = t.Enabled && t.MetricsEnabled
	if stack.meters, err = telemetry.InitMeter(ctx, metricsCfg, t.MetricsInterval, log); err != nil {
		return nil, err
	}
	stack.meter = stack.meters.Meter()

	logsCfg := base
	logsCfg.Enabled = t.Enabled && t.LogsEnabled
	if stack.logs, err = telemetry.InitLogs(ctx, logsCfg, log); err != nil {
		return nil, err
	}
	return stack, nil
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	ctx := context.Background()
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Warn("Log provider shutdown failed", zap.Error(err))
	}
	if err := t.meters.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := t.tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := t.profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
}
