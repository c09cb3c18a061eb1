package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driveport/service-rental/internal/application"
	"github.com/driveport/service-rental/internal/auth"
	"github.com/driveport/service-rental/internal/config"
	"github.com/driveport/service-rental/internal/database"
	bookingDomain "github.com/driveport/service-rental/internal/domain/booking"
	"github.com/driveport/service-rental/internal/events"
	"github.com/driveport/service-rental/internal/handler"
	"github.com/driveport/service-rental/internal/health"
	"github.com/driveport/service-rental/internal/kafka"
	"github.com/driveport/service-rental/internal/logger"
	"github.com/driveport/service-rental/internal/middleware"
	"github.com/driveport/service-rental/internal/notification"
	"github.com/driveport/service-rental/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "service-rental"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DB.DSN(), log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	migrationsDir := os.Getenv("RENTAL_MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.RunMigrations(cfg.DB.URL(), migrationsDir, log); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	// Repositories.
	bookingRepo := repository.NewGormBookingRepository(db)
	carRepo := repository.NewGormCarRepository(db)
	hubRepo := repository.NewGormHubRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	staffRepo := repository.NewGormStaffRepository(db)

	// Eventing.
	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = producer.Close() }()

	notifier := notification.NewLogNotifier(log)

	// Services.
	bookingService := application.NewBookingService(
		bookingRepo,
		carRepo,
		customerRepo,
		bookingDomain.NewStandardRateCalculator(),
		notifier,
		producer,
		log,
	)
	txRunner := repository.NewTxRunner(db)
	fleetService := application.NewFleetService(carRepo, hubRepo, customerRepo, staffRepo, bookingRepo, txRunner, log)

	// Background notification consumer.
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	notificationConsumer := events.NewNotificationEventConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupPrefix+"notifications",
		notifier,
		log,
	)
	go func() {
		if err := notificationConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("notification consumer stopped", zap.Error(err))
		}
	}()
	defer func() { _ = notificationConsumer.Close() }()

	// HTTP.
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	router := buildRouter(cfg, db, jwtManager, bookingService, fleetService, log)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancelConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

func buildRouter(
	cfg *config.ServiceConfig,
	db *gorm.DB,
	jwtManager *auth.JWTManager,
	bookingService *application.BookingService,
	fleetService *application.FleetService,
	log *zap.Logger,
) *gin.Engine {
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.CORSMiddleware(),
		middleware.SecurityHeadersMiddleware(),
	)

	health.NewHandler(db, serviceName).RegisterRoutes(router)

	bookingHandler := handler.NewBookingHandler(bookingService, log)
	catalogHandler := handler.NewCatalogHandler(fleetService, log)
	adminHandler := handler.NewAdminHandler(fleetService, bookingService, log)

	api := router.Group("/api/v1")
	catalogHandler.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(jwtManager))
	bookingHandler.RegisterRoutes(authed)

	staffOnly := api.Group("")
	staffOnly.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleStaff))
	catalogHandler.RegisterStaffRoutes(staffOnly)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	adminHandler.RegisterRoutes(admin)

	return router
}
