package store

import (
	"context"
	"fmt"
	"log/slog"

	"pogoda/internal/config"
	"pogoda/internal/weather"
)

// Open connects the history store selected by cfg.HistoryBackend and prepares
// its schema. It returns a nil store for "memory", where history lives only in
// sessions. The returned close function is never nil.
func Open(ctx context.Context, cfg config.Config) (weather.HistoryStore, func(), error) {
	switch cfg.HistoryBackend {
	case "postgres":
		db, err := New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		slog.Info("search history in postgres")
		return db, db.Close, nil
	case "sqlite":
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		slog.Info("search history in sqlite", "path", cfg.SQLitePath)
		return db, func() { db.Close() }, nil
	case "redis":
		r, err := NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, func() {}, err
		}
		slog.Info("search history in redis", "addr", cfg.RedisAddr)
		return r, func() { r.Close() }, nil
	case "", "memory":
		return nil, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}
