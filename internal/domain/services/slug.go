package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// assignSlug fills page.Slug from the name when empty, adding a numeric
// suffix until it is free, or checks that an explicit slug is not owned by
// another page. reserved maps slugs already handed out in the same batch to
// their page id and may be nil.
func assignSlug(ctx context.Context, db ports.RelationalDB, page *entities.Page, reserved map[string]string) error {
	owner := func(slug string) (string, error) {
		if id, ok := reserved[slug]; ok {
			return id, nil
		}
		p, err := db.FindPageBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, entities.ErrNotFound) {
				return "", nil
			}
			return "", fmt.Errorf("checking slug: %w", err)
		}
		return p.ID, nil
	}

	if page.Slug != "" {
		taken, err := owner(page.Slug)
		if err != nil {
			return err
		}
		if taken != "" && taken != page.ID {
			return fmt.Errorf("slug %q: %w", page.Slug, entities.ErrConflict)
		}
	} else {
		base := entities.Slugify(page.Name)
		if base == "" {
			base = "page"
		}
		candidate := base
		for n := 2; ; n++ {
			taken, err := owner(candidate)
			if err != nil {
				return err
			}
			if taken == "" || taken == page.ID {
				break
			}
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		page.Slug = candidate
	}

	if reserved != nil {
		reserved[page.Slug] = page.ID
	}
	return nil
}
