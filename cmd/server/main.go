package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	assetapp "github.com/finbooks/backend/internal/application/asset"
	costingapp "github.com/finbooks/backend/internal/application/costing"
	ledgerapp "github.com/finbooks/backend/internal/application/ledger"
	planningapp "github.com/finbooks/backend/internal/application/planning"
	"github.com/finbooks/backend/internal/infrastructure/cache"
	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/infrastructure/persistence"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/finbooks/backend/internal/interfaces/http/handler"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
	"github.com/finbooks/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting FinBooks",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("base_currency", cfg.Ledger.BaseCurrency),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Balance cache: Redis when reachable, in-process otherwise
	var balanceCache ledgerapp.BalanceCache
	redisCache, err := cache.NewRedisBalanceCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.BalanceTTL,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory balance cache", zap.Error(err))
		balanceCache = cache.NewInMemoryBalanceCache(cfg.Redis.BalanceTTL)
	} else {
		balanceCache = redisCache
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis balance cache connected", zap.String("addr", cfg.Redis.Addr()))
	}

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.Enabled, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	assetRepo := persistence.NewGormAssetRepository(db.DB)
	assetCategoryRepo := persistence.NewGormAssetCategoryRepository(db.DB)
	depreciationRepo := persistence.NewGormDepreciationRepository(db.DB)
	safetyStockRepo := persistence.NewGormSafetyStockRepository(db.DB)
	demandHistoryRepo := persistence.NewGormDemandHistoryRepository(db.DB)
	standardCostRepo := persistence.NewGormStandardCostRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	revaluationRepo := persistence.NewGormRevaluationRepository(db.DB)
	productCostReader := persistence.NewGormProductCostReader(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Initialize application services
	accountService := ledgerapp.NewAccountService(accountRepo)
	transactionService := ledgerapp.NewTransactionService(transactionRepo, accountRepo, balanceCache, uow)
	journalQueryService := ledgerapp.NewJournalQueryService(transactionRepo, accountRepo, balanceCache)
	assetService := assetapp.NewAssetService(assetRepo, assetCategoryRepo)
	depreciationService := assetapp.NewDepreciationService(assetRepo, assetCategoryRepo, depreciationRepo, transactionRepo, uow)
	safetyStockService := planningapp.NewSafetyStockService(safetyStockRepo, demandHistoryRepo, uow)
	standardCostService := costingapp.NewStandardCostService(standardCostRepo, bomRepo, productCostReader)
	revaluationService := costingapp.NewRevaluationService(revaluationRepo, productCostReader, transactionRepo, uow)

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService, journalQueryService)
	transactionHandler := handler.NewTransactionHandler(transactionService, journalQueryService)
	assetHandler := handler.NewAssetHandler(assetService, depreciationService)
	planningHandler := handler.NewPlanningHandler(safetyStockService)
	costingHandler := handler.NewCostingHandler(standardCostService, revaluationService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(accountHandler).
		Register(transactionHandler).
		Register(assetHandler).
		Register(planningHandler).
		Register(costingHandler)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
