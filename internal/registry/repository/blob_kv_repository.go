package repository

import (
	"context"

	"gocloud.dev/blob"
	// Bucket drivers selected by URL scheme.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
)

const blobContentType = "application/json"

// BlobKVRepository stores each key as a JSON object in a gocloud bucket.
// file:// keeps the registry in a local directory; mem:// is used in tests.
type BlobKVRepository struct {
	bucket *blob.Bucket
}

// OpenBlobKVRepository opens the bucket at url, e.g.
// "file:///home/alice/.config/par-noir?create_dir=true" or "mem://".
func OpenBlobKVRepository(ctx context.Context, url string) (*BlobKVRepository, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open registry bucket")
	}
	return &BlobKVRepository{bucket: bucket}, nil
}

// NewBlobKVRepository wraps an already opened bucket.
func NewBlobKVRepository(bucket *blob.Bucket) *BlobKVRepository {
	return &BlobKVRepository{bucket: bucket}
}

func objectKey(key string) string {
	return key + ".json"
}

// Get returns the value stored under key or apperrors.ErrNotFound.
func (b *BlobKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.bucket.ReadAll(ctx, objectKey(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to read registry object")
	}
	return data, nil
}

// Set replaces the object stored under key.
func (b *BlobKVRepository) Set(ctx context.Context, key string, value []byte) error {
	opts := &blob.WriterOptions{ContentType: blobContentType}
	if err := b.bucket.WriteAll(ctx, objectKey(key), value, opts); err != nil {
		return apperrors.Wrap(err, "failed to write registry object")
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *BlobKVRepository) Delete(ctx context.Context, key string) error {
	err := b.bucket.Delete(ctx, objectKey(key))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return apperrors.Wrap(err, "failed to delete registry object")
	}
	return nil
}

// Close releases the bucket.
func (b *BlobKVRepository) Close() error {
	return b.bucket.Close()
}
