// Package storage provides the document vault on S3-compatible object
// storage: one folder (key prefix) per customer, one object per uploaded
// document.
package storage

import (
	"context"
	"io"
)

// Folder is a provisioned per-customer prefix in the documents bucket.
type Folder struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// StoredObject describes an uploaded document.
type StoredObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// DocumentVault defines the storage operations the conversation flow needs.
type DocumentVault interface {
	// EnsureBucketExists creates the documents bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context) error

	// EnsureCustomerFolder provisions the per-customer folder, named after
	// the customer's full name and number. Safe to call repeatedly; the
	// folder is created at most once.
	EnsureCustomerFolder(ctx context.Context, fullName, waNumber string) (Folder, error)

	// UploadDocument stores one document under the customer's folder and
	// returns its key and browse URL.
	UploadDocument(ctx context.Context, folderKey, fileName, contentType string, reader io.Reader, size int64) (StoredObject, error)
}

// Config defines the configuration interface for the vault.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketDocuments() string
	IsMinIOEnabled() bool
}
