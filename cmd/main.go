package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hudsonargollo/agend4i-sub002/internal/caching"
	"github.com/hudsonargollo/agend4i-sub002/internal/config"
	"github.com/hudsonargollo/agend4i-sub002/internal/handlers"
	"github.com/hudsonargollo/agend4i-sub002/internal/jobs"
	"github.com/hudsonargollo/agend4i-sub002/internal/jobs/background"
	"github.com/hudsonargollo/agend4i-sub002/internal/logger"
	"github.com/hudsonargollo/agend4i-sub002/internal/middleware"
	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"
	"github.com/hudsonargollo/agend4i-sub002/internal/services"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	// Create database connection pool
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	staffRepo := repositories.NewStaffRepo(pool)
	serviceRepo := repositories.NewServiceRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	bookingRepo := repositories.NewBookingRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Webhook payload archive
	archiveSvc, err := services.NewArchiveService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		zlog.Fatal("failed to initialize archive service", zap.Error(err))
	}
	if err := archiveSvc.EnsureBucketExists(context.Background()); err != nil {
		zlog.Warn("archive bucket check failed", zap.Error(err))
	}

	// Create services
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc, zlog)
	catalogSvc := services.NewCatalogService(staffRepo, serviceRepo)
	availabilitySvc := services.NewAvailabilityService(bookingRepo)
	notificationSvc := services.NewNotificationService(zlog)
	bookingSvc := services.NewBookingService(
		bookingRepo,
		staffRepo,
		serviceRepo,
		customerRepo,
		availabilitySvc,
		cacheSvc,
		notificationSvc,
		cfg.DefaultPhoneRegion,
		zlog,
	)
	paymentsSvc := services.NewMercadoPagoService(cfg.MPBaseURL, cfg.MPAccessToken, zlog)
	reconciliationSvc, err := services.NewReconciliationService(cfg.MPWebhookSecret, tenantRepo, paymentsSvc, archiveSvc, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize reconciliation service", zap.Error(err))
	}

	// Create handlers
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, zlog)
	catalogHandlers := handlers.NewCatalogHandlers(catalogSvc, tenantSvc, zlog)
	bookingHandlers := handlers.NewBookingHandlers(bookingSvc, availabilitySvc, tenantSvc, zlog)
	webhookHandlers := handlers.NewWebhookHandlers(reconciliationSvc, cfg.Plans, zlog)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background maintenance
	maintenance := jobs.NewBookingMaintenance(bookingRepo, zlog)
	scheduler, err := background.NewJobScheduler(maintenance, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop() //nolint:errcheck

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// Payment provider callbacks (signature-authenticated)
	e.POST("/webhooks/mercadopago", webhookHandlers.MercadoPagoWebhook)
	e.GET("/webhooks/mercadopago", webhookHandlers.MercadoPagoWebhookInfo)

	v1 := e.Group("/v1")

	// Onboarding
	v1.POST("/tenants", tenantHandlers.CreateTenant)

	// Public booking page routes, addressed by tenant slug
	public := v1.Group("/public/:slug")
	public.GET("/staff", catalogHandlers.PublicListStaff)
	public.GET("/services", catalogHandlers.PublicListServices)
	public.GET("/availability", bookingHandlers.GetAvailability)
	public.POST("/bookings", bookingHandlers.CreateBooking)

	// Admin dashboard routes (require JWT)
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(cfg.JWTSecret))

	protected.GET("/tenant", tenantHandlers.GetProfile)
	protected.PUT("/tenant", tenantHandlers.UpdateProfile)
	protected.DELETE("/tenant", tenantHandlers.DeactivateTenant)

	protected.GET("/staff", catalogHandlers.ListStaff)
	protected.POST("/staff", catalogHandlers.CreateStaff)
	protected.PUT("/staff/:id", catalogHandlers.UpdateStaff)
	protected.DELETE("/staff/:id", catalogHandlers.DeactivateStaff)

	protected.GET("/services", catalogHandlers.ListServices)
	protected.POST("/services", catalogHandlers.CreateService)
	protected.PUT("/services/:id", catalogHandlers.UpdateService)
	protected.DELETE("/services/:id", catalogHandlers.DeactivateService)

	protected.GET("/bookings", bookingHandlers.ListBookings)
	protected.PUT("/bookings/:id/status", bookingHandlers.UpdateBookingStatus)

	zlog.Info("server starting", zap.String("version", version), zap.Int("port", cfg.Port))
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
