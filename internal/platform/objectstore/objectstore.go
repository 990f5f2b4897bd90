// Package objectstore provides raw object storage for medical image bytes.
// It defines the ObjectStore interface, a MinIO-backed implementation used in
// deployment, and an in-memory implementation for testing and development.
package objectstore

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// DefaultURLExpiry is the presigned URL lifetime used when the caller does
// not specify one.
const DefaultURLExpiry = time.Hour

// ObjectStore is the contract for storing and serving image objects.
// Put returns a stable URL string that is persisted alongside the image
// metadata; KeyFromURL reverses that mapping so presigned URL issuance and
// deletion can recover the object key from a stored URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
	KeyFromURL(url string) string
}
