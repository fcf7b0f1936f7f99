// Package storage abstracts the optional binary-object host used to mirror
// profile pictures. Core services depend only on BlobUploader; the S3-backed
// implementation lives behind it.
package storage

import "context"

// BlobUploader stores a binary blob under a key and returns a durable URL.
type BlobUploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
