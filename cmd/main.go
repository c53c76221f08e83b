package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/pokernow/config"
	"github.com/Dosada05/pokernow/db"
	"github.com/Dosada05/pokernow/events"
	"github.com/Dosada05/pokernow/handlers"
	"github.com/Dosada05/pokernow/hub"
	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/repositories"
	api "github.com/Dosada05/pokernow/routes"
	"github.com/Dosada05/pokernow/scheduler"
	"github.com/Dosada05/pokernow/services"
	"github.com/Dosada05/pokernow/storage"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

// @title PokerNow venue API
// @version 1.0
// @description Table occupancy, seat check-in and tournament clocks for poker venues.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	// Store
	var (
		shopRepo       repositories.ShopRepository
		playerRepo     repositories.PlayerRepository
		tableRepo      repositories.TableRepository
		seatingRepo    repositories.SeatingRepository
		tournamentRepo repositories.TournamentRepository
		transactor     repositories.Transactor
		pinger         handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(appCtx, dbConn); err != nil {
			logger.Error("failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database connection established")

		shopRepo = repositories.NewPostgresShopRepository(dbConn)
		playerRepo = repositories.NewPostgresPlayerRepository(dbConn)
		tableRepo = repositories.NewPostgresTableRepository(dbConn)
		seatingRepo = repositories.NewPostgresSeatingRepository(dbConn)
		tournamentRepo = repositories.NewPostgresTournamentRepository(dbConn)
		transactor = repositories.NewPostgresTransactor(dbConn)
		pinger = dbConn
	} else {
		store := repositories.NewMemoryStore()
		shopRepo = store.Shops()
		playerRepo = store.Players()
		tableRepo = store.Tables()
		seatingRepo = store.Seatings()
		tournamentRepo = store.Tournaments()
		transactor = store.Transactor()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	// Locks
	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(appCtx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "pokernow:lock:")
		logger.Info("redis lock enabled", slog.String("addr", cfg.RedisAddr))
	}

	// Events
	publisher := events.NewNoopPublisher()
	if cfg.AMQPURL != "" {
		amqpPublisher := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err := amqpPublisher.Connect(); err != nil {
			// Publishing reconnects lazily; the broker may come up later.
			logger.Warn("rabbitmq not reachable at startup", slog.Any("error", err))
		}
		publisher = amqpPublisher
		logger.Info("rabbitmq publisher enabled", slog.String("exchange", cfg.AMQPExchange))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.Any("error", err))
		}
	}()

	// Object storage
	var uploader storage.FileUploader
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(appCtx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	wsHub := hub.NewHub(logger)
	go wsHub.Run(appCtx)
	logger.Info("WebSocket hub started")

	// Services
	authService := services.NewAuthService(playerRepo, cfg.JWTSecretKey, cfg.StaffPINHash, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, shopRepo, transactor, locker, wsHub, publisher, logger)
	seatingService := services.NewSeatingService(seatingRepo, tableRepo, shopRepo, playerRepo, transactor, locker, wsHub, publisher, logger)
	tableService := services.NewTableService(tableRepo, seatingRepo, shopRepo, transactor, locker, uploader, publisher, logger)
	dashboardService := services.NewDashboardService(shopRepo, tableRepo, seatingRepo, tournamentRepo)
	logger.Info("services initialized")

	if cfg.SeedDemo {
		if err := seedDemo(appCtx, shopRepo, tableService, logger); err != nil {
			logger.Error("failed to seed demo data", slog.Any("error", err))
			os.Exit(1)
		}
	}

	clockScheduler, err := scheduler.NewClockScheduler(tournamentService, cfg.TickInterval, logger)
	if err != nil {
		logger.Error("failed to create clock scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	if err := clockScheduler.Start(appCtx); err != nil {
		logger.Error("failed to start clock scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Seating:    handlers.NewSeatingHandler(seatingService),
		Table:      handlers.NewTableHandler(tableService),
		Dashboard:  handlers.NewDashboardHandler(dashboardService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, dashboardService, cfg.CORSOrigins, logger),
		Health:     handlers.NewHealthHandler(pinger),
	}, authService, cfg.CORSOrigins)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if err := clockScheduler.Shutdown(); err != nil {
		logger.Error("failed to stop clock scheduler", slog.Any("error", err))
	}
	// Stops the hub and closes websocket clients.
	cancelApp()
	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
