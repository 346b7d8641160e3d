package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// ErrUnsupportedType is returned for content types that are not images
var ErrUnsupportedType = errors.New("unsupported content type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension of an accepted image content type
func ExtensionFor(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExtensions[ct]
	return ext, ok
}

// ObjectStore stores uploaded objects and returns their public URL
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// BucketStore keeps objects in a blob bucket. Public URLs are the object
// name under publicBase, which is a path prefix or an absolute URL.
type BucketStore struct {
	bucket     *blob.Bucket
	publicBase string
}

// NewBucketStore wraps an open bucket
func NewBucketStore(bucket *blob.Bucket, publicBase string) *BucketStore {
	return &BucketStore{bucket: bucket, publicBase: normalizeBase(publicBase)}
}

// OpenBucket opens a bucket URL such as s3://name?region=eu-west-1 or gs://name
func OpenBucket(ctx context.Context, bucketURL, publicBase string) (*BucketStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketURL, err)
	}
	return NewBucketStore(bucket, publicBase), nil
}

// OpenLocal stores objects as plain files in dir, served under publicBase
func OpenLocal(dir, publicBase string) (*BucketStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{
		Metadata:  fileblob.MetadataDontWrite,
		NoTempDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage dir: %w", err)
	}
	return NewBucketStore(bucket, publicBase), nil
}

func normalizeBase(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "/uploads"
	}
	if strings.Contains(base, "://") {
		return base
	}
	return "/" + strings.TrimLeft(base, "/")
}

// Put writes r to name. The name must be a plain file name.
func (s *BucketStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if _, ok := ExtensionFor(contentType); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	// cancelling the writer context discards a partial object
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, name, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to open object: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	return s.publicBase + "/" + name, nil
}

// Close releases the bucket
func (s *BucketStore) Close() error {
	return s.bucket.Close()
}
