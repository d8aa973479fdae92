package port

import (
	"context"
	"io"
)

// UploadInput describes an object to store.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput is the stored object's location.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage archives generated reports.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
