// Package storage keeps uploaded files on the local filesystem or in S3.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bizfish/tag-a-meal-app/internal/utils"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

type (
	ObjectInfo struct {
		Key     string
		Size    int64
		ModTime time.Time
	}

	// Storage addresses objects by slash separated keys such as
	// "recipes/recipe_<id>.jpg".
	Storage interface {
		Save(ctx context.Context, key string, r io.Reader, contentType string) error
		Open(ctx context.Context, key string) (io.ReadCloser, error)
		Delete(ctx context.Context, key string) error
		Stat(ctx context.Context, key string) (ObjectInfo, error)
		PublicURL(key string) string
	}
)

// New builds the driver selected by STORAGE_DRIVER.
func New(ctx context.Context) (Storage, error) {
	switch utils.GetConfig("STORAGE_DRIVER") {
	case "s3":
		return NewAwsS3(ctx)
	default:
		return NewLocalStorage(utils.GetConfig("UPLOAD_PATH"), "/uploads")
	}
}
