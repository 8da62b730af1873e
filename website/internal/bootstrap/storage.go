package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/config"
	"github.com/oe/sunrain-sub002/website/internal/storage"
)

// Store is the configured session store.
type Store struct {
	Secure *storage.SecureStore
	// Ping is nil for backends without a reachability check.
	Ping  func(ctx context.Context) error
	close func()
}

// Close releases backend connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// SetupStorage opens the backend named by storage.backend.
func SetupStorage(
	ctx context.Context,
	cfg *config.Config,
	redisClient *redis.Client,
	observer storage.Observer,
	log infralogger.Logger,
) (*Store, error) {
	out := &Store{}
	var backend storage.Backend

	switch cfg.Storage.Backend {
	case config.BackendFile:
		fileBackend, err := storage.NewFileBackend(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		backend, out.Ping = fileBackend, fileBackend.Ping
	case config.BackendRedis:
		redisBackend := storage.NewRedisBackend(redisClient, cfg.Storage.Prefix)
		backend, out.Ping = redisBackend, redisBackend.Ping
	case config.BackendPostgres:
		db, err := storage.OpenPostgres(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.Database.MaxConnections)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		out.close = func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("Failed to close database", infralogger.Error(closeErr))
			}
		}

		pg, err := storage.NewPostgresBackend(db, cfg.Storage.Table)
		if err != nil {
			out.Close()
			return nil, err
		}
		if err = pg.EnsureSchema(ctx); err != nil {
			out.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		backend, out.Ping = pg, pg.Ping
	case config.BackendMemory:
		backend = storage.NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	out.Secure = storage.NewSecureStore(backend, cfg.Storage.Prefix, log, storage.WithObserver(observer))
	log.Info("Session store ready", infralogger.String("backend", cfg.Storage.Backend))
	return out, nil
}
