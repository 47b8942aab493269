// Package storage keeps uploaded pictures in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is the subset of object storage the services need.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	// PresignGet returns a temporary URL to download key.
	PresignGet(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh storage key of the form users/yyyy/m/d/<uuid>.
func NewKey(now time.Time) string {
	return fmt.Sprintf("users/%d/%d/%d/%v", now.Year(), now.Month(), now.Day(), uuid.New())
}
