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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/pollafutbolera/polla-engine/config"
	"github.com/pollafutbolera/polla-engine/db"
	"github.com/pollafutbolera/polla-engine/handlers"
	"github.com/pollafutbolera/polla-engine/ingest"
	"github.com/pollafutbolera/polla-engine/live"
	"github.com/pollafutbolera/polla-engine/middleware"
	"github.com/pollafutbolera/polla-engine/repositories"
	api "github.com/pollafutbolera/polla-engine/routes"
	"github.com/pollafutbolera/polla-engine/services"
	"github.com/pollafutbolera/polla-engine/storage"
)

// sweepInterval paces the background phase-completion pass. The sweep is
// idempotent, so a short interval only costs queries.
const sweepInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Flag storage is optional; without R2 credentials the upload endpoint
	// reports storage as unconfigured.
	var flagStore storage.FlagStore
	if cfg.R2AccountID != "" {
		flagStore, err = storage.NewCloudflareR2Store(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 flag store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 flag store initialized")
	}

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	phaseRepo := repositories.NewPostgresPhaseStatusRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	bonusRepo := repositories.NewPostgresBonusRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	overrideRepo := repositories.NewPostgresStandingsOverrideRepository(dbConn)
	txRunner := repositories.NewSQLTxRunner(dbConn)

	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo, flagStore)
	phaseService := services.NewPhaseService(txRunner, tournamentRepo, matchRepo, phaseRepo, hub, logger)
	scoringService := services.NewScoringService(
		services.DefaultScoringConfig(),
		txRunner,
		matchRepo,
		predictionRepo,
		bracketRepo,
		bonusRepo,
		userRepo,
		hub,
		logger,
	)
	standingsService := services.NewStandingsService(txRunner, matchRepo, overrideRepo, teamRepo, hub)
	predictionService := services.NewPredictionService(txRunner, matchRepo, predictionRepo, leagueRepo, phaseService)
	resultService := services.NewResultService(matchRepo, scoringService, phaseService, hub, logger)
	bracketService := services.NewBracketService(txRunner, bracketRepo, matchRepo)
	bonusService := services.NewBonusService(txRunner, bonusRepo)
	leagueService := services.NewLeagueService(txRunner, leagueRepo, tournamentRepo)
	logger.Info("services initialized")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background phase sweep: catches phases whose completion was missed,
	// for example when a result landed while the process was down.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		logger.Info("phase sweep scheduler started", slog.Duration("interval", sweepInterval))

		if err := phaseService.SweepActiveTournaments(rootCtx); err != nil {
			logger.Error("initial phase sweep failed", slog.Any("error", err))
		}
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if err := phaseService.SweepActiveTournaments(rootCtx); err != nil {
					logger.Error("phase sweep failed", slog.Any("error", err))
				}
			}
		}
	}()

	if cfg.AMQPURL != "" {
		consumer := ingest.NewConsumer(cfg.AMQPURL, cfg.ResultsQueueName, resultService, logger)
		go consumer.Run(rootCtx)
	} else {
		logger.Info("AMQP_URL not set, results consumer disabled")
	}

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Prediction: handlers.NewPredictionHandler(predictionService),
		Phase:      handlers.NewPhaseHandler(phaseService),
		Standings:  handlers.NewStandingsHandler(standingsService),
		Scoring:    handlers.NewScoringHandler(scoringService),
		Result:     handlers.NewResultHandler(resultService),
		Bonus:      handlers.NewBonusHandler(bonusService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		League:     handlers.NewLeagueHandler(leagueService),
		Team:       handlers.NewTeamHandler(teamService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
	}, authenticator)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
