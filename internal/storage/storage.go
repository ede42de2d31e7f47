// Package storage keeps uploaded post images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yatube/internal/config"
)

// PostsPrefix is the key namespace for post images.
const PostsPrefix = "posts/"

var ErrNotImage = errors.New("file must be an image")

type Store interface {
	// Save writes r under a fresh key below prefix and returns that key.
	Save(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// URL is the public address of key; empty for an empty key.
	URL(key string) string
}

func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "local":
		logger.Info("Storing media on disk", zap.String("dir", cfg.Dir))
		return NewLocal(cfg.Dir, cfg.URLPrefix)
	case "minio":
		store, err := NewMinio(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Successfully connected to MinIO", zap.String("bucket", cfg.Bucket))
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// CheckImage accepts image/* content types only.
func CheckImage(contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	return nil
}

// objectKey builds prefix + uuid + lower-cased extension of filename.
func objectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.New().String()+ext)
}
