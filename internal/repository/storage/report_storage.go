package storage

import (
	"context"
	"io"
	"time"
)

// ReportStorage stores exported report files and hands out temporary links
type ReportStorage interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
