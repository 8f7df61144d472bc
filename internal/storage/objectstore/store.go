package objectstore

import (
	"context"
	"time"
)

// Store mints presigned URLs against S3-compatible object storage. Reads
// and writes of artifact payloads happen directly between the pipeline
// step and the store; this layer only hands out scoped access.
type Store interface {
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
