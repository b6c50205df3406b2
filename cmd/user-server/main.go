package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/clinic-services/internal/api"
	"github.com/clinicore/clinic-services/internal/auth"
	"github.com/clinicore/clinic-services/internal/config"
	"github.com/clinicore/clinic-services/internal/db"
	"github.com/clinicore/clinic-services/internal/user"
)

const version = "1.0.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", "user-server"),
	)
	logger.Info("starting up")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(cfg.PostgresDSN, logger); err != nil {
		logger.Error("migration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	jwtAuth, err := auth.NewJWTAuth(auth.JWTAuthConfig{
		JWKSURL:         cfg.JWKSURL,
		ClientTimeout:   cfg.JWKSTimeout,
		RefreshInterval: cfg.JWKSRefresh,
		JWTLeeway:       cfg.JWTLeeway,
	}, logger)
	if err != nil {
		logger.Error("jwt auth init error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := user.NewPgRepository(pgPool)
	svc := user.NewService(repo)

	router := api.NewUserRouter(api.RouterConfig{
		Auth:    jwtAuth.Middleware(),
		PgPool:  pgPool,
		Logger:  logger,
		Env:     cfg.Env,
		Version: version,
	}, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", slog.String("port", cfg.HTTPPort), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-rootCtx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
}
