package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"designdesk/internal/adapter/repo"
	"designdesk/internal/agent"
	"designdesk/internal/http/handlers"
	"designdesk/internal/http/httpapi"
	"designdesk/internal/infra"
	"designdesk/internal/infra/geoip"
	"designdesk/internal/lifecycle"
	"designdesk/internal/middleware"
	"designdesk/internal/providers/oracle"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	// GeoIP is optional; without a database the locale falls back to headers.
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, locale detection degraded")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	completer, err := oracle.NewClient(oracle.Options{
		APIKey:         cfg.OracleAPIKey,
		BaseURL:        cfg.OracleBaseURL,
		Model:          cfg.OracleModel,
		Logger:         &logger,
		RequestTimeout: cfg.OracleTimeout,
		MaxRetries:     cfg.OracleMaxRetries,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build completion client")
	}

	requests := repo.NewRequestRepository(dbpool)
	timeLogs := repo.NewTimeLogRepository(dbpool)
	transitions := repo.NewTransitionStore(dbpool)
	guidance := repo.NewGuidanceRepository(dbpool)

	query := agent.NewQueryHandler(requests, guidance, &logger)
	manage := agent.NewManageHandler(requests, &logger)
	orchestrator := agent.NewOrchestrator(
		agent.NewRouter(completer, &logger),
		agent.NewCreator(completer, guidance, &logger),
		query,
		manage,
		&logger,
	)
	machine := lifecycle.NewMachine(transitions, requests, &logger)

	app := handlers.NewApp(orchestrator, query, manage, machine, requests, timeLogs, guidance, &logger)
	router := httpapi.NewRouter(app, cfg, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
