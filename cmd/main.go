// @title AgroLedger API
// @version 1.0
// @description Crop trading bookkeeping: stock, party ledgers and the cash register.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "agroledger/docs"
	"agroledger/internal/caching"
	"agroledger/internal/config"
	"agroledger/internal/handlers"
	"agroledger/internal/jobs"
	"agroledger/internal/jobs/background"
	"agroledger/internal/middleware"
	"agroledger/internal/repositories"
	"agroledger/internal/services"
	"agroledger/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	store := repositories.NewStore(pool)

	var cacheSvc caching.CacheService
	if cfg.Redis.Addr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		log.Printf("WARN: REDIS_ADDR not set, using in-process cache")
		cacheSvc = caching.NewLocalCacheService()
	}

	// Attachments are optional; without MinIO the attachment endpoints answer 503
	var minioSvc services.MinioService
	if cfg.Minio.Endpoint != "" {
		minioSvc, err = services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Region, cfg.Minio.UseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO service: %v", err)
		}
		if err := minioSvc.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
			log.Printf("WARN: attachment bucket %s unavailable: %v", cfg.Minio.Bucket, err)
		}
	}

	// Services
	authSvc := services.NewAuthService(store.Repos().Users, cacheSvc, cfg.Auth.JWTSecret, cfg.Auth.AccessTTLSeconds, cfg.Auth.RefreshTTLSeconds)
	transactionSvc := services.NewTransactionService(store, cacheSvc, minioSvc, cfg.Minio.Bucket)
	cashSvc := services.NewCashRegisterService(store, cacheSvc)
	ledgerSvc := services.NewLedgerService(store)
	inventorySvc := services.NewInventoryService(store, cacheSvc)
	dashboardSvc := services.NewDashboardService(store, cacheSvc)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := authSvc.EnsureUser(ctx, "admin", cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, "Administrator", "admin"); err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
	}

	api := &handlers.API{
		Auth:         handlers.NewAuthHandlers(authSvc),
		Dashboard:    handlers.NewDashboardHandlers(dashboardSvc),
		Locations:    handlers.NewLocationHandlers(services.NewLocationService(store)),
		Parties:      handlers.NewPartyHandlers(services.NewPartyService(store, cacheSvc)),
		Crops:        handlers.NewCropHandlers(services.NewCropService(store, cacheSvc)),
		Transactions: handlers.NewTransactionHandlers(transactionSvc),
		Inventory:    handlers.NewInventoryHandlers(inventorySvc),
		CashRegister: handlers.NewCashRegisterHandlers(cashSvc),
		Ledger:       handlers.NewLedgerHandlers(ledgerSvc),
	}
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc, cfg.Minio.Bucket, version)

	// JWKS is only needed when tokens from an external identity provider are accepted
	jwtConfig := middleware.JWTConfig(cfg.Auth.JWTSecret, nil)
	if cfg.Auth.JWKSURL != "" {
		jwks, err := middleware.NewJWKS(cfg.Auth.JWKSURL)
		if err != nil {
			log.Fatalf("Failed to load JWKS from %s: %v", cfg.Auth.JWKSURL, err)
		}
		defer jwks.EndBackground()
		jwtConfig = middleware.JWTConfig(cfg.Auth.JWTSecret, jwks)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.BodyLimit("10M"))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	versionMiddleware := middleware.NewVersionMiddleware()
	e.GET("/api/versions", versionMiddleware.Versions)

	v1 := versionMiddleware.VersionRoute(e, "/api", "v1")
	api.RegisterPublic(v1)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(middleware.TokenContext(authSvc))
	api.RegisterProtected(protected)

	var scheduler *background.JobScheduler
	if cfg.Jobs.Enabled {
		scheduler, err = background.NewJobScheduler(
			jobs.NewInventoryAlertService(inventorySvc),
			jobs.NewReconciliationService(ledgerSvc, cashSvc),
			dashboardSvc,
			background.Intervals{
				LowStock:       cfg.Jobs.LowStockInterval.Duration,
				Reconciliation: cfg.Jobs.ReconciliationInterval.Duration,
				DashboardWarm:  cfg.Jobs.DashboardWarmInterval.Duration,
			},
		)
		if err != nil {
			log.Fatalf("Failed to create job scheduler: %v", err)
		}
		scheduler.Start()
	}

	go func() {
		log.Printf("AgroLedger server v%s starting on port %d", version, cfg.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown: %v", err)
		}
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: server shutdown: %v", err)
	}
}
