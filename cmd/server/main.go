package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jasonlvhit/gocron"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"regatta-server/internal/config"
	"regatta-server/internal/events"
	"regatta-server/internal/geo"
	"regatta-server/internal/handlers"
	"regatta-server/internal/notify"
	"regatta-server/internal/repository"
	"regatta-server/internal/services"
	"regatta-server/internal/simulation"
	"regatta-server/internal/stations"
	"regatta-server/internal/stream"
	"regatta-server/internal/tactical"
	"regatta-server/internal/windfield"
	"regatta-server/pkg/cache"
	"regatta-server/pkg/database"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Args[1:]...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("regatta-server", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting regatta server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"area_lat":    cfg.Simulation.AreaLat,
		"area_lon":    cfg.Simulation.AreaLon,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("regatta_server")

	// Initialize database. The server runs in degraded mode without it:
	// board reads fall through to the cache and demo tiers.
	var boardRepo repository.BoardRepository

	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Warn(ctx, "[STARTUP_DEGRADED] Database unavailable, board serves cached or demo data", logging.Fields{
			"db_host": cfg.Database.Host,
		}, err)
	} else {
		defer db.Close()
		boardRepo = repository.NewBoardRepository(db, logger, metricsCollector)
	}

	// Initialize the snapshot cache
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger, metricsCollector)
		if err != nil {
			logger.Warn(ctx, "[STARTUP_DEGRADED] Redis unavailable, running without snapshot cache", logging.Fields{
				"addr": cfg.Redis.Addr,
			}, err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	// Initialize the event bus
	publisher := events.NewPublisher(logger, metricsCollector)
	if cfg.NATS.Enabled {
		if err := publisher.Connect(cfg.NATS.URL); err != nil {
			logger.Warn(ctx, "[STARTUP_DEGRADED] NATS unavailable, events disabled", logging.Fields{
				"url": cfg.NATS.URL,
			}, err)
		}
	}
	defer publisher.Close()

	notifier := notify.Notifier{Config: notify.Config{
		Host:     cfg.XMPP.Host,
		Jid:      cfg.XMPP.Jid,
		Password: cfg.XMPP.Password,
		To:       cfg.XMPP.To,
	}}

	// Initialize the simulation
	center := geo.LatLon{Lat: cfg.Simulation.AreaLat, Lon: cfg.Simulation.AreaLon}
	shore := geo.LatLon{Lat: cfg.Simulation.ShoreLat, Lon: cfg.Simulation.ShoreLon}
	engine := simulation.NewEngine(cfg.Simulation.Seed, center, shore, cfg.Simulation.RefreshInterval)

	// Initialize live wind when a GRIB directory is configured
	var windProvider *windfield.Provider
	if cfg.Simulation.GribDir != "" {
		windProvider = windfield.NewProvider(cfg.Simulation.GribDir)
		if err := windProvider.Reload(); err != nil {
			logger.Warn(ctx, "[STARTUP_DEGRADED] No usable wind files yet, starting simulated", logging.Fields{
				"grib_dir": cfg.Simulation.GribDir,
			}, err)
		}
	}

	// Initialize streaming and analysis
	broker := stream.NewBroker()
	hub := stream.NewHub(broker, logger, metricsCollector)
	analyzer := tactical.NewAnalyzer(tactical.Config{
		NeutralBandDeg:          cfg.Tactical.NeutralBandDeg,
		SquareBandDeg:           cfg.Tactical.SquareBandDeg,
		HighBiasDeg:             cfg.Tactical.HighBiasDeg,
		MediumBiasDeg:           cfg.Tactical.MediumBiasDeg,
		SteadyBandDeg:           cfg.Tactical.SteadyBandDeg,
		OscillatingBandDeg:      cfg.Tactical.OscillatingBandDeg,
		ModerateCurrentRatio:    cfg.Tactical.ModerateCurrentRatio,
		SignificantCurrentRatio: cfg.Tactical.SignificantCurrentRatio,
	})
	registry := stations.NewRegistry()

	// Initialize services
	conditionsService := services.NewConditionsService(
		engine, windProvider, redisCache, broker, publisher, notifier, analyzer, logger, metricsCollector)
	boardService := services.NewBoardService(boardRepo, redisCache, broker, publisher, logger, metricsCollector)
	calendarService := services.NewCalendarService(logger)

	// Initialize handlers
	conditionsHandler := handlers.NewConditionsHandler(conditionsService, registry, logger, metricsCollector)
	boardHandler := handlers.NewBoardHandler(boardService, calendarService, logger, metricsCollector)
	healthHandler := handlers.NewHealthHandler(boardService, conditionsService, redisCache, publisher, logger)

	// Setup router
	router := mux.NewRouter()

	conditionsHandler.RegisterRoutes(router)
	boardHandler.RegisterRoutes(router)
	healthHandler.RegisterRoutes(router)

	router.HandleFunc("/ws", hub.HandleWebSocket)
	router.Handle("/metrics", promhttp.Handler())

	// Run the websocket hub
	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go hub.Run(hubCtx)

	// Warm the first snapshot so the initial request is served instantly
	conditionsService.Current(ctx)

	// Schedule the periodic refresh
	scheduler := gocron.NewScheduler()
	scheduler.Every(uint64(cfg.Simulation.RefreshInterval.Seconds())).Seconds().Do(conditionsService.ScheduledRefresh)
	go scheduler.Start()
	defer scheduler.Clear()

	logger.Info(ctx, "[SCHEDULER_START] Condition refresh scheduled", logging.Fields{
		"interval": cfg.Simulation.RefreshInterval.String(),
	})

	// Create HTTP server with CORS for the mobile webview client
	corsHandler := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		ghandlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
