package storage

import (
	"context"
	"fmt"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
	"github.com/harshkrt/FinAgent/shared/infrastructure/storage/adapters/fs"
	"github.com/harshkrt/FinAgent/shared/infrastructure/storage/adapters/s3"
)

// Create builds the storage adapter selected by ADAPTER_STORAGE. The
// returned storage has already ensured its bucket exists.
func Create(ctx context.Context, cfg *config.Config, obs ports.Observability) (ports.Storage, error) {
	switch cfg.Adapters.Storage {
	case "s3":
		logger, metrics, err := obs.ComponentsScoped("storage.s3")
		if err != nil {
			return nil, err
		}
		logger.Info("Creating S3 storage adapter",
			"bucket", cfg.Storage.Bucket,
			"region", cfg.Storage.S3.Region)
		client, err := s3.New(ctx, &cfg.Storage, logger, metrics)
		if err != nil {
			return nil, err
		}
		return client, nil

	case "filesystem":
		logger, metrics, err := obs.ComponentsScoped("storage.filesystem")
		if err != nil {
			return nil, err
		}
		logger.Info("Creating filesystem storage adapter",
			"path", cfg.Storage.Path,
			"bucket", cfg.Storage.Bucket)
		store, err := fs.NewStorage(cfg.Storage.Path, cfg.Storage.Bucket, logger, metrics)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage adapter: %s", cfg.Adapters.Storage)
	}
}
