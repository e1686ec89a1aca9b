package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/db"
	httpx "github.com/geocoder89/accounthub/internal/http"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is optional; skip when no collector endpoint is configured
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "accounthub", cfg.OTELEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db pool init failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	// seed the first superuser if configured
	{
		ctx, cancel := config.WithTimeout(5 * time.Second)
		err := db.EnsureAdminUser(ctx, pool, cfg)
		cancel()

		if err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}
	}

	jwtManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTTL())

	if err != nil {
		log.Error("jwt manager init failed", "err", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	usersRepo := postgres.NewUsersRepo(pool, prom)

	router := httpx.NewRouter(log, httpx.Deps{
		Cfg:      cfg,
		Users:    usersRepo,
		JWT:      jwtManager,
		Ping:     httpx.DefaultPing(pool.Ping),
		Prom:     prom,
		Registry: registry,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
