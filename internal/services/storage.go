package services

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the slice of the object-storage client the services need.
// Satisfied by storage.MinIOClient; tests substitute an in-memory store.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration, contentType string, contentDisposition string) (string, error)
}
