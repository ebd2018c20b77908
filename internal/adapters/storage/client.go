package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// folderMarker is the zero-byte object that materializes a customer folder
// before the first document lands in it.
const folderMarker = ".folder"

// MinIOVault implements DocumentVault using MinIO.
type MinIOVault struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

// NewMinIOVault creates a new MinIO-backed document vault.
func NewMinIOVault(cfg Config) (*MinIOVault, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOVault{
		client:   client,
		bucket:   cfg.GetMinioBucketDocuments(),
		endpoint: cfg.GetMinIOEndpoint(),
		secure:   cfg.GetMinIOUseSSL(),
	}, nil
}

// Compile-time check that MinIOVault implements DocumentVault.
var _ DocumentVault = (*MinIOVault)(nil)

// EnsureBucketExists creates the documents bucket if it doesn't exist.
func (v *MinIOVault) EnsureBucketExists(ctx context.Context) error {
	exists, err := v.client.BucketExists(ctx, v.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := v.client.MakeBucket(ctx, v.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", v.bucket, err)
		}
	}
	return nil
}

// EnsureCustomerFolder provisions the customer's folder prefix by writing a
// zero-byte marker object. Repeat calls overwrite the marker, which is
// harmless.
func (v *MinIOVault) EnsureCustomerFolder(ctx context.Context, fullName, waNumber string) (Folder, error) {
	key := FolderKey(fullName, waNumber)

	markerKey := key + folderMarker
	_, err := v.client.PutObject(ctx, v.bucket, markerKey,
		bytes.NewReader(nil), 0, minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return Folder{}, fmt.Errorf("failed to provision folder %s: %w", key, err)
	}

	return Folder{Key: key, URL: v.objectURL(key)}, nil
}

// UploadDocument stores one document under the given folder prefix.
func (v *MinIOVault) UploadDocument(ctx context.Context, folderKey, fileName, contentType string, reader io.Reader, size int64) (StoredObject, error) {
	key := folderKey + fileName

	_, err := v.client.PutObject(ctx, v.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to upload document %s: %w", key, err)
	}

	return StoredObject{Key: key, URL: v.objectURL(key)}, nil
}

func (v *MinIOVault) objectURL(key string) string {
	scheme := "http"
	if v.secure {
		scheme = "https"
	}
	// Keys are URL-safe by construction (FolderKey plus generated filenames).
	return fmt.Sprintf("%s://%s/%s/%s", scheme, v.endpoint, v.bucket, key)
}

// FolderKey derives the customer's folder prefix from their name and number.
// Names are lowercased and squashed to underscores so the key stays URL-safe.
func FolderKey(fullName, waNumber string) string {
	name := strings.ToLower(strings.TrimSpace(fullName))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-':
			b.WriteByte('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		slug = "customer"
	}
	return fmt.Sprintf("%s_%s/", slug, waNumber)
}
