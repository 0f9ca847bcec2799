package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/auth"
	"github.com/erp/pricing/internal/infrastructure/cache"
	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/infrastructure/persistence"
	"github.com/erp/pricing/internal/interfaces/http/handler"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/erp/pricing/internal/interfaces/http/router"
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

	log.Info("Starting pricing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	priceListRepo := persistence.NewGormPriceListRepository(db.DB)
	productCatalog := persistence.NewGormProductCatalog(db.DB)
	_ = persistence.NewGormDiscountRepository(db.DB)
	_ = persistence.NewGormPromotionRepository(db.DB)
	_ = persistence.NewGormPromotionUsageRepository(db.DB)

	// Transaction scope makes redemption commits atomic with the usage counters
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Redemption dedupe store: Redis when reachable, in-memory otherwise.
	// In-memory dedupe does not survive restarts or span replicas.
	var idempotencyStore shared.IdempotencyStore
	var closeIdempotencyStore func() error
	if redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory redemption dedupe", zap.Error(err))
		memStore := cache.NewInMemoryIdempotencyStore()
		idempotencyStore = memStore
		closeIdempotencyStore = memStore.Close
	} else {
		log.Info("Redis connected for redemption dedupe",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
		idempotencyStore = redisStore
		closeIdempotencyStore = redisStore.Close
	}
	defer func() {
		if err := closeIdempotencyStore(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize application services
	tolerance := decimal.NewFromFloat(cfg.Pricing.TolerancePercent)
	priceService := pricingapp.NewPriceValidationService(priceListRepo, productCatalog, tolerance, log)
	discountService := pricingapp.NewDiscountValidationService(txScope, idempotencyStore, log)
	promotionService := pricingapp.NewPromotionValidationService(txScope, idempotencyStore, log)
	if cfg.Pricing.CommitDedupeTTL > 0 {
		discountService.SetCommitDedupeTTL(cfg.Pricing.CommitDedupeTTL)
		promotionService.SetCommitDedupeTTL(cfg.Pricing.CommitDedupeTTL)
	}
	adjustmentService := pricingapp.NewOrderAdjustmentService(priceService, discountService, promotionService, log)

	log.Info("Pricing services initialized",
		zap.String("tolerance_percent", tolerance.String()),
		zap.Duration("commit_dedupe_ttl", cfg.Pricing.CommitDedupeTTL),
	)

	// JWT service for request authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Order access policy derived from JWT roles: managers and admins act on
	// any order in their tenant, salespeople only on their own
	accessPolicy := auth.NewRoleAccessPolicy()

	// Initialize HTTP handlers
	priceHandler := handler.NewPriceHandler(priceService)
	discountHandler := handler.NewDiscountHandler(discountService, accessPolicy)
	promotionHandler := handler.NewPromotionHandler(promotionService, accessPolicy)
	adjustmentHandler := handler.NewOrderAdjustmentHandler(adjustmentService, accessPolicy)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication, then tenant extraction, to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = append(tenantConfig.SkipPaths,
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Sales pricing domain: price resolution, discount and promotion
	// validation, redemption commits, and whole-order adjustment plans
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "sales pricing service ready"})
	})

	// Price resolution
	salesRoutes.POST("/prices/resolve", priceHandler.ResolvePrice)

	// Discount validation and redemption
	salesRoutes.POST("/discounts/validate", discountHandler.Validate)
	salesRoutes.POST("/discounts/validate-batch", discountHandler.ValidateMultiple)
	salesRoutes.POST("/discounts/automatic", discountHandler.GetAutomatic)
	salesRoutes.POST("/discounts/:id/redemptions", discountHandler.CommitUsage)

	// Promotion validation and redemption
	salesRoutes.POST("/promotions/validate", promotionHandler.Validate)
	salesRoutes.POST("/promotions/applicable", promotionHandler.GetApplicable)
	salesRoutes.GET("/promotions/:id/usage", promotionHandler.GetCustomerUsage)
	salesRoutes.POST("/promotions/:id/redemptions", promotionHandler.CommitUsage)

	// Whole-order adjustment resolution
	salesRoutes.POST("/orders/adjustments", adjustmentHandler.Resolve)

	r.Register(salesRoutes)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
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
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
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
