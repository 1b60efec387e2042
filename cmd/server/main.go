package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightlog-service/internal/domain/repository"
	"flightlog-service/internal/infrastructure/config"
	"flightlog-service/internal/infrastructure/identity"
	"flightlog-service/internal/infrastructure/persistence"
	"flightlog-service/internal/interface/api"
	remoteRepo "flightlog-service/internal/interface/repository"
	"flightlog-service/internal/usecase"
	"flightlog-service/pkg/logger"
	"flightlog-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Flightlog Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local durable state
	snapshots := persistence.NewSnapshotStore(cfg.DataDir)
	store := usecase.NewLocalStore(snapshots, log)
	if err := store.Load(); err != nil {
		log.Warn("Local snapshot unreadable, starting empty", "error", err)
	}
	log.Info("Local store loaded", "flights", store.Count(), "path", snapshots.Path())

	// Resolve the per-installation identity
	provider := identity.NewProvider(cfg.DataDir, log)
	who, err := provider.Resolve(identity.Options{
		PlatformUserID:   cfg.TelegramUserID,
		PlatformUsername: cfg.TelegramUsername,
		Anonymous:        cfg.AnonymousUser,
	})
	if err != nil {
		log.Fatal("Failed to resolve identity", "error", err)
	}

	// Remote datastore, driver-selected
	var remote repository.RemoteFlightRepository
	var mongoClient *mongo.Client
	var checker usecase.ConnectivityChecker = usecase.StaticChecker(false)

	switch cfg.RemoteDriver {
	case config.DriverPostgres:
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		remote, err = remoteRepo.NewGormFlightRepository(gormDB)
		if err != nil {
			log.Fatal("Failed to prepare flight table", "error", err)
		}
		checker = usecase.NewHTTPChecker(cfg.ConnectivityProbeURL)

	case config.DriverMongo:
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		remote = remoteRepo.NewMongoFlightRepository(db, log)
		checker = usecase.NewHTTPChecker(cfg.ConnectivityProbeURL)

	case config.DriverNone:
		log.Info("No remote datastore configured, running standalone")

	default:
		log.Fatal("Unknown remote driver", "driver", cfg.RemoteDriver)
	}

	// Sync coordinator
	m := metrics.NewMetrics("flightlog")
	coordinator := usecase.NewSyncCoordinator(
		store, remote, who, checker,
		cfg.DebounceQuiet, cfg.ConnectivityInterval,
		m, log,
	)
	if err := coordinator.Start(ctx); err != nil {
		log.Fatal("Failed to start sync coordinator", "error", err)
	}

	// HTTP API
	flightHandler := api.NewFlightHandler(store, log)
	syncHandler := api.NewSyncHandler(coordinator, who, log)
	router := api.NewRouter(flightHandler, syncHandler)

	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
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

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	coordinator.Close()
	cancel()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Flightlog Service stopped")
}
