package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch-console/internal/domain/repository"
	"dispatch-console/internal/infrastructure/config"
	"dispatch-console/internal/infrastructure/persistence"
	"dispatch-console/internal/interface/httpapi"
	mongoRepo "dispatch-console/internal/interface/repository"
	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Dispatch Server")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	location := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Airports live in PostgreSQL; without it the worker uses its built-in table
	var airports repository.AirportRepository
	if cfg.PostgresURI != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		if err := mongoRepo.MigrateAirports(gormDB); err != nil {
			log.Fatal("Failed to migrate airports", "error", err)
		}
		airports = mongoRepo.NewGormAirportRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, using built-in airport coordinates")
	}

	m := metrics.NewMetrics("dispatch_server", prometheus.DefaultRegisterer)

	// Set up repositories
	scheduleRepo := mongoRepo.NewMongoScheduleRepository(db)
	userRepo := mongoRepo.NewMongoUserRepository(db)
	unitRepo := mongoRepo.NewMongoTransportUnitRepository(db)

	// Flight ETA worker
	if cfg.AviationEdgeKey != "" {
		flights := mongoRepo.NewAviationEdgeRepository(cfg.AviationEdgeURL, cfg.AviationEdgeKey, log.With("component", "aviation-edge"))
		worker := usecase.NewETAWorker(scheduleRepo, airports, flights, location, m, log.With("component", "eta-worker"))
		if err := worker.Start(ctx); err != nil {
			log.Fatal("Failed to start ETA worker", "error", err)
		}
	} else {
		log.Warn("AVIATION_EDGE_KEY not set, ETA worker disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(
		httpapi.NewScheduleHandler(scheduleRepo, log),
		httpapi.NewAdminHandler(userRepo, unitRepo, scheduleRepo, location, log),
		log,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Dispatch Server stopped")
}
