package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleet/internal/app"
	"fleet/internal/config"
	"fleet/internal/handler"
	internalRedis "fleet/internal/redis"
	"fleet/internal/repository/postgres"
	"fleet/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server := wireServer(db, redisClient, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	loc := cfg.Earnings.Location()

	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Earnings.SchemeCacheTTL)

	// Initialize repositories.
	driverRepo := postgres.NewDriverRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	schemeRepo := postgres.NewSchemeRepository(db)
	dutyRepo := postgres.NewDutyRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize services.
	notificationService := service.NewNotificationService()
	driverService := service.NewDriverService(locationStore, cacheStore, driverRepo, notificationService)
	vehicleService := service.NewVehicleService(vehicleRepo)
	schemeService := service.NewSchemeService(schemeRepo, cacheStore).WithLocation(loc)
	assignmentService := service.NewAssignmentService(
		txManager, assignmentRepo, driverRepo, vehicleRepo, lockStore, notificationService,
		service.AssignmentConfig{
			LockTTL:        cfg.Scheduling.LockTTL,
			MaxSuggestions: cfg.Scheduling.MaxSuggestions,
			MaxOccurrences: cfg.Scheduling.MaxRecurringOccurrences,
			Location:       loc,
		},
	)
	dutyService := service.NewDutyService(dutyRepo, driverRepo, vehicleRepo, assignmentRepo, schemeService, notificationService, nrApp, loc)
	payrollService := service.NewPayrollService(dutyRepo, driverRepo, loc)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		DriverHandler:     handler.NewDriverHandler(driverService),
		VehicleHandler:    handler.NewVehicleHandler(vehicleService),
		SchemeHandler:     handler.NewSchemeHandler(schemeService),
		DutyHandler:       handler.NewDutyHandler(dutyService),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService),
		PayrollHandler:    handler.NewPayrollHandler(payrollService),
		RedisClient:       redisClient,
		NewRelicApp:       nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
