package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// MaxImageSize bounds uploaded images.
const MaxImageSize = 10 << 20

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

var (
	reKeySpace   = regexp.MustCompile(`\s+`)
	reKeyInvalid = regexp.MustCompile(`[^a-z0-9._-]+`)
)

// ImageKey returns the object key of a page image: the lowercased id with
// whitespace collapsed to hyphens, then the extension.
func ImageKey(pageID, ext string) string {
	safe := strings.ToLower(strings.TrimSpace(pageID))
	safe = reKeySpace.ReplaceAllString(safe, "-")
	safe = reKeyInvalid.ReplaceAllString(safe, "_")
	if safe == "" {
		safe = "unknown"
	}
	return safe + "." + ext
}

// ImageService attaches images to pages.
type ImageService struct {
	relationalDB ports.RelationalDB
	store        ports.ImageStore
	authorizer   *Authorizer
}

// NewImageService creates a new ImageService.
func NewImageService(relationalDB ports.RelationalDB, store ports.ImageStore, authorizer *Authorizer) *ImageService {
	return &ImageService{relationalDB: relationalDB, store: store, authorizer: authorizer}
}

// Upload stores an image for a page, replacing any previous one under the
// same key, and records its public URL on the page.
func (s *ImageService) Upload(ctx context.Context, sess *Session, id string, kind entities.Kind, filename string, data []byte) (*entities.Page, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermPageImage)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return nil, entities.NewValidationError("file", fmt.Sprintf("unsupported image type %q (valid: jpg, jpeg, png, gif, webp)", ext))
	}
	if len(data) == 0 {
		return nil, entities.NewValidationError("file", "image is empty")
	}
	if len(data) > MaxImageSize {
		return nil, entities.NewValidationError("file", fmt.Sprintf("image exceeds %d MiB", MaxImageSize>>20))
	}
	if detected := http.DetectContentType(data); !strings.HasPrefix(detected, "image/") {
		return nil, entities.NewValidationError("file", fmt.Sprintf("content is %s, not an image", detected))
	}

	page, err := s.relationalDB.FindPage(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	key := ImageKey(page.ID, ext)
	url, err := s.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}

	page.ImageURL = url
	page.UpdatedAt = time.Now().UTC()
	if err := s.relationalDB.UpsertPage(ctx, page); err != nil {
		return nil, fmt.Errorf("saving page: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionPageImage, actor.ID, page.ID, map[string]any{
		"key":  key,
		"size": len(data),
	})
	return page, nil
}
