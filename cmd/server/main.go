package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"pogoda/internal/api"
	"pogoda/internal/backend"
	"pogoda/internal/config"
	"pogoda/internal/store"
	"pogoda/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history, closeHistory, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open history store", "backend", cfg.HistoryBackend, "err", err)
		os.Exit(1)
	}
	defer closeHistory()

	client := backend.NewClient(cfg.BackendURL, backend.Options{
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
	})

	svc := weather.NewService(client, history, weather.NewNormalizer(cfg.Location))

	sessions := weather.NewSessions(cfg.SessionTTL)
	go sessions.RunSweepLoop(ctx, time.Minute)

	mux := http.NewServeMux()
	handler := api.NewHandler(svc)
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewSessionMiddleware(sessions, cfg.SessionSecret, cfg.SessionTTL)(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3*cfg.BackendTimeout + 5*time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	slog.Info("server stopped")
}
