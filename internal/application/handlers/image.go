package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

// ImageHandler handles page image uploads.
type ImageHandler struct {
	service *services.ImageService
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(service *services.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

// HandleUpload reads at most MaxImageSize bytes from r and attaches them to
// the page as its image.
func (h *ImageHandler) HandleUpload(ctx context.Context, sess *services.Session, id, kind, filename string, r io.Reader) (*entities.Page, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, services.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return h.service.Upload(ctx, sess, id, k, filename, data)
}

// HandleUploadFile uploads an image from disk.
func (h *ImageHandler) HandleUploadFile(ctx context.Context, sess *services.Session, id, kind, path string) (*entities.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return h.HandleUpload(ctx, sess, id, kind, filepath.Base(path), f)
}
