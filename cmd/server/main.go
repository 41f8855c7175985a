package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"votemate/internal/config"
	"votemate/internal/db"
	"votemate/internal/router"
	"votemate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	creatorCacheSize = 1000
	creatorCacheTTL  = 10 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}

	creators, err := services.NewCreatorCache(conn, creatorCacheSize, creatorCacheTTL)
	if err != nil {
		slog.Error("creator cache setup failed", "error", err)
		os.Exit(1)
	}
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	engine := router.New(router.Deps{
		Auth:           services.NewAuthService(conn, tokens),
		Polls:          services.NewPollService(conn, creators),
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookie:   cfg.CookieSecure,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("voteMate server listening", "port", cfg.Port, "origins", cfg.AllowedOrigins)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-drained
	slog.Info("server closed")
}
