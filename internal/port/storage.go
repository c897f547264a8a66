package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	// Open streams an object from its start. The caller closes the reader.
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	// ReadRange returns up to length bytes starting at offset.
	ReadRange(ctx context.Context, bucket, key string, offset, length int64) ([]byte, error)
	Size(ctx context.Context, bucket, key string) (int64, error)
	Delete(ctx context.Context, bucket, key string) error
	// DeletePrefix removes every object under prefix and returns the count.
	DeletePrefix(ctx context.Context, bucket, prefix string) (int, error)
}
