package storage

import (
	"context"
	"fmt"

	"github.com/ikkim/kicks-storefront/config"
	"github.com/ikkim/kicks-storefront/internal/db"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"github.com/ikkim/kicks-storefront/pkg/redis"
)

// Open builds the backend selected by cfg.Storage.Driver. The returned
// close function releases the connection it opened.
func Open(ctx context.Context, cfg *config.Config) (Backend, func() error, error) {
	noop := func() error { return nil }

	var (
		backend Backend
		closeFn = noop
	)

	switch cfg.Storage.Driver {
	case "memory":
		backend = NewMemoryBackend()

	case "redis":
		if err := redis.Init(&cfg.Redis); err != nil {
			return nil, noop, err
		}
		backend = NewRedisBackend(redis.GetClient(), "", cfg.Cart.RecordTTL)
		closeFn = redis.Close

	case "postgres", "sqlite":
		if err := db.Initialize(cfg.Storage.Driver, &cfg.Database); err != nil {
			return nil, noop, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		backend = NewGormBackend(db.GetDB())
		closeFn = db.Close

	case "s3":
		client, err := NewS3Client(ctx, S3Options{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		backend = NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Prefix)

	default:
		return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	logger.Info("Cart storage ready", map[string]interface{}{
		"driver":  cfg.Storage.Driver,
		"backend": backend.Name(),
	})
	return backend, closeFn, nil
}
