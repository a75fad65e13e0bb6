package mocks

import (
	"context"
	"fmt"
)

// ImageStore is a mock implementation of ports.ImageStore.
type ImageStore struct {
	Objects map[string][]byte
	BaseURL string
	Err     error

	// Call tracking
	UploadLastKey         string
	UploadLastContentType string
}

// NewImageStore creates a new mock ImageStore.
func NewImageStore() *ImageStore {
	return &ImageStore{Objects: make(map[string][]byte), BaseURL: "http://images.test"}
}

// Upload stores data under key.
func (m *ImageStore) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	m.UploadLastKey = key
	m.UploadLastContentType = contentType
	if m.Err != nil {
		return "", m.Err
	}
	m.Objects[key] = data
	return fmt.Sprintf("%s/%s", m.BaseURL, key), nil
}

// Delete removes the object under key.
func (m *ImageStore) Delete(_ context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Objects, key)
	return nil
}
