package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"authgateway/internal/config"
	"authgateway/internal/logger"
	"authgateway/internal/routing"
	"authgateway/internal/storage"
	"authgateway/pkg/authengine"
	"authgateway/pkg/claims"
	"authgateway/pkg/gateway"
)

func main() {
	cfg, err := config.Load() // env vars, optionally from ENV_FILE
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logger.Load(cfg.Env, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.DatabaseURL, cfg.RedisURL, logger)
	if err != nil {
		logger.Error("storage", "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())
	logger.Info("database connected", "backend", store.Backend)

	signer, err := claims.NewSigner(cfg.AuthSecret, cfg.AuthURL)
	if err != nil {
		logger.Error("signer", "error", err)
		os.Exit(1)
	}

	engine, err := authengine.New(store.Users, store.Sessions, signer, authengine.Options{
		BaseURL:        cfg.AuthURL,
		SessionTTL:     cfg.SessionTTL,
		TrustedOrigins: []string{cfg.ClientOrigin},
	}, logger)
	if err != nil {
		logger.Error("auth engine", "error", err)
		os.Exit(1)
	}
	go engine.RunPurge(ctx, cfg.SessionPurgeInterval)

	gw := gateway.New(engine, logger, gateway.Options{TrustProxy: cfg.TrustProxy})

	r := mux.NewRouter()
	routing.InitRoutes(r, gw, store, logger)
	routing.ServeFallback(r, logger)

	handler, err := routing.Handler(r, []string{cfg.ClientOrigin}, logger)
	if err != nil {
		logger.Error("cors", "error", err)
		os.Exit(1)
	}

	logger.Info("auth endpoints available", "path", engine.BasePath()+"/*", "cors_origin", cfg.ClientOrigin)
	if err := routing.StartServer(ctx, cfg.Addr(), handler, logger); err != nil {
		logger.Error("server failed", "error", err)
		stop()
		store.Close(context.Background())
		os.Exit(1)
	}
}
