package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisHistoryKey = "pogoda:history"
	redisHistoryLen = 100
	redisMaxRetries = 5
)

// Redis keeps search history in a capped list, most recent first.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, key: redisHistoryKey}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// SaveSearch moves city to the head of the list, dropping entries that differ
// from it only in case. The read and the update run under WATCH.
func (r *Redis) SaveSearch(ctx context.Context, city string) error {
	key := cityKey(city)
	txf := func(tx *redis.Tx) error {
		items, err := tx.LRange(ctx, r.key, 0, -1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, item := range items {
				if cityKey(item) == key {
					pipe.LRem(ctx, r.key, 0, item)
				}
			}
			pipe.LPush(ctx, r.key, city)
			pipe.LTrim(ctx, r.key, 0, redisHistoryLen-1)
			return nil
		})
		return err
	}

	for range redisMaxRetries {
		err := r.client.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("save search: %w", err)
		}
		return nil
	}
	return fmt.Errorf("save search: %w", redis.TxFailedErr)
}

func (r *Redis) RecentSearches(ctx context.Context, limit int) ([]string, error) {
	cities, err := r.client.LRange(ctx, r.key, 0, int64(normalizeLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return cities, nil
}
