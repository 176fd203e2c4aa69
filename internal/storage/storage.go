package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	TypeLocal = "local"
	// TypeS3 покрывает и AWS S3, и S3-совместимые хранилища (Cloudflare R2, MinIO) через endpoint
	TypeS3 = "s3"
)

var ErrObjectNotFound = errors.New("storage: object not found")

// Storage - хранилище бинарных объектов по ключу
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Type      string `yaml:"type"`      // local, s3
	BasePath  string `yaml:"base_path"` // для local
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // R2: https://<account_id>.r2.cloudflarestorage.com
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg)
	case TypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
