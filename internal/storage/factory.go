package storage

import (
	"fmt"

	"github.com/livecommerce/stream-analyzer/internal/config"
)

// New builds the object store selected by cfg.StorageBackend
func New(cfg *config.Config) (StorageInterface, error) {
	switch cfg.StorageBackend {
	case "azure":
		return NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
	case "minio":
		return NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	case "local", "":
		return NewLocalStorage(cfg.LocalStorageDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// NewIndex opens the report index, or returns nil when DATABASE_URL is unset
func NewIndex(cfg *config.Config) (ReportIndex, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	idx, err := NewPostgresIndex(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return idx, nil
}
