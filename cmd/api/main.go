package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"gather/internal/auth"
	"gather/internal/config"
	"gather/internal/groups"
	transporthttp "gather/internal/http"
	"gather/internal/metrics"
	"gather/internal/platform/database"
	"gather/internal/platform/logging"
	"gather/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	userRepo, groupRepo, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repositories", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	registry, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize identity providers", "error", err)
		os.Exit(1)
	}

	registryMetrics := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registryMetrics)

	signer := auth.NewTokenSigner(cfg.SessionSecret, cfg.SessionTTL)
	reconciler := users.NewService(userRepo)
	groupService := groups.NewService(groupRepo, userRepo)

	router, stopRouter := transporthttp.NewRouter(transporthttp.RouterDeps{
		Config:     cfg,
		Registry:   registry,
		Signer:     signer,
		Reconciler: reconciler,
		Groups:     groupService,
		Recorder:   recorder,
		Gatherer:   registryMetrics,
		Logger:     logger,
	})
	defer stopRouter()

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Gather listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (users.Repository, groups.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory repositories")
		return users.NewInMemoryRepository(nil), groups.NewInMemoryRepository(nil), nil, nil
	}

	db, cleanup, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := database.EnsureIndexes(ctx, db); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
	return users.NewMongoRepository(db), groups.NewMongoRepository(db), cleanup, nil
}

func buildProviders(ctx context.Context, cfg config.Config, logger *slog.Logger) (*auth.Registry, error) {
	var providers []auth.Provider

	if cfg.GoogleClientID != "" {
		google, err := auth.NewGoogleProvider(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURL("google"))
		if err != nil {
			return nil, err
		}
		providers = append(providers, google)
	} else {
		logger.Warn("google login disabled; GOOGLE_CLIENT_ID not set")
	}

	if cfg.KakaoClientID != "" {
		providers = append(providers, auth.NewKakaoProvider(cfg.KakaoClientID, cfg.KakaoClientSecret, cfg.RedirectURL("kakao")))
	} else {
		logger.Warn("kakao login disabled; KAKAO_CLIENT_ID not set")
	}

	return auth.NewRegistry(providers...), nil
}
