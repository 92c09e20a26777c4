// Package storage abstracts the object store holding uploaded audio blobs.
package storage

import "context"

// Object is a stored blob with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// ObjectStore is the blob store contract consumed by the upload service and
// the audio serving handler. Get returns (nil, nil) for a missing key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}
