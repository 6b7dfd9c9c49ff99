// Package storage abstracts the blob store that holds uploaded image bytes.
// The rest of the application only ever sees the URL that comes back from
// Upload; the store itself (MinIO or any S3-compatible service) is an
// external collaborator.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrUploadFailed wraps any blob store failure so handlers can map it
// without inspecting the underlying client error.
var ErrUploadFailed = errors.New("image upload failed")

// ObjectStore stores image blobs and hands back a publicly resolvable URL.
type ObjectStore interface {
	Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (string, error)
}

// MinioStore implements ObjectStore for MinIO/S3 compatible storage.
// Objects are written under <folder>/<timestamp>-<random>.<ext> and the
// returned URL is publicBase + "/" + key.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.  When
// publicBase is empty, URLs are built from the endpoint and bucket.
func NewMinioStore(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	if publicBase == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}
	return &MinioStore{client: client, bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Upload stores the object and returns its public URL.
func (m *MinioStore) Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (string, error) {
	key := objectKey(folder, contentType)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return m.publicBase + "/" + key, nil
}

// objectKey builds a collision-resistant key from the upload time, a random
// suffix and an extension derived from the content type.
func objectKey(folder, contentType string) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	ext := "bin"
	if i := strings.LastIndex(contentType, "/"); i >= 0 && i < len(contentType)-1 {
		ext = contentType[i+1:]
	}
	return fmt.Sprintf("%s/%d-%s.%s", folder, time.Now().UTC().UnixNano(), hex.EncodeToString(buf), ext)
}
