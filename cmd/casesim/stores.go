package main

import (
	"context"
	"log/slog"
	"time"

	"mediqa/casesim/internal/cache"
	"mediqa/casesim/internal/config"
	"mediqa/casesim/internal/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stores are the tab store and attempt archive selected by configuration
type stores struct {
	tabs     cache.TabStore
	attempts repository.AttemptRepo
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects Redis and MongoDB when configured, falling back to
// in-process memory otherwise
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	s := &stores{}

	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisURI,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			rdb.Close()
			return nil, errors.Wrapf(err, "ping redis %s", cfg.RedisURI)
		}
		s.closers = append(s.closers, func() { rdb.Close() })
		s.tabs = cache.NewRedisTabStore(rdb, cfg.TabTTL)
		logger.Info("connected to redis", slog.String("addr", cfg.RedisURI))
	} else {
		s.tabs = cache.NewMemoryTabStore()
		logger.Info("using in-memory tab store")
	}

	if cfg.MongoEnabled() {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			s.Close()
			return nil, errors.Wrap(err, "connect mongo")
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(context.Background())
			s.Close()
			return nil, errors.Wrap(err, "ping mongo")
		}
		s.closers = append(s.closers, func() { client.Disconnect(context.Background()) })
		s.attempts = repository.NewAttemptRepo(client.Database(cfg.MongoDatabase))
		logger.Info("connected to mongodb", slog.String("database", cfg.MongoDatabase))
	} else {
		s.attempts = repository.NewMemoryAttemptRepo()
		logger.Info("using in-memory attempt archive")
	}

	return s, nil
}
