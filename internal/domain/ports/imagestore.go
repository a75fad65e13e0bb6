package ports

import "context"

// ImageStore holds page images and serves them from a public URL.
type ImageStore interface {
	// Upload writes data under key, replacing any existing object, and
	// returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
}
