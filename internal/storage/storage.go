// Package storage talks to S3-compatible object storage, where raw uploads
// are archived and from where the CLI pulls CSV exports.
package storage

import "context"

// ObjectInfo identifies a remote object by its full key.
type ObjectInfo struct {
	Key string
}

// ObjectStorage captures the minimal S3-compatible operations ingestion needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}
