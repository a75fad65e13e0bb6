package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// PageIndexer keeps a secondary index in step with page mutations.
type PageIndexer interface {
	Index(ctx context.Context, page *entities.Page)
	Remove(ctx context.Context, pageID string)
}

// PageDetail is a page with its relations resolved against the scope.
type PageDetail struct {
	Page       entities.Page            `json:"page"`
	Relations  []graph.ResolvedRelation `json:"relations"`
	Inbound    []entities.Page          `json:"inbound"`
	Candidates []entities.Page          `json:"candidates"`
	Selected   bool                     `json:"selected"`
}

// PageService manages page operations.
type PageService struct {
	relationalDB ports.RelationalDB
	authorizer   *Authorizer
	indexer      PageIndexer
	now          func() time.Time
}

// NewPageService creates a new PageService. indexer may be nil.
func NewPageService(relationalDB ports.RelationalDB, authorizer *Authorizer, indexer PageIndexer) *PageService {
	return &PageService{
		relationalDB: relationalDB,
		authorizer:   authorizer,
		indexer:      indexer,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns the pages visible in scope. selected is false when no
// universe has been chosen.
func (s *PageService) List(ctx context.Context, scope graph.Scope) (pages []entities.Page, selected bool, err error) {
	all, err := s.relationalDB.ListPages(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("listing pages: %w", err)
	}
	pages, selected = graph.Filter(all, scope)
	return pages, selected, nil
}

// All returns every page regardless of scope.
func (s *PageService) All(ctx context.Context) ([]entities.Page, error) {
	return s.relationalDB.ListPages(ctx)
}

// Get looks a page up by id and kind.
func (s *PageService) Get(ctx context.Context, id string, kind entities.Kind) (*entities.Page, error) {
	return s.relationalDB.FindPage(ctx, id, kind)
}

// Find looks a page up by id, falling back to slug.
func (s *PageService) Find(ctx context.Context, ref string) (*entities.Page, error) {
	page, err := s.relationalDB.FindPageByID(ctx, ref)
	if err == nil || !errors.Is(err, entities.ErrNotFound) {
		return page, err
	}
	return s.relationalDB.FindPageBySlug(ctx, ref)
}

// Detail loads a page and resolves its relations against the pages in
// scope. Relations, inbound references and candidates all come from the
// same filtered set.
func (s *PageService) Detail(ctx context.Context, id string, kind entities.Kind, scope graph.Scope) (*PageDetail, error) {
	page, err := s.relationalDB.FindPage(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	visible, selected, err := s.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &PageDetail{
		Page:       *page,
		Relations:  graph.Resolve(page.Relations, visible),
		Inbound:    graph.Inbound(visible, page.ID),
		Candidates: graph.Candidates(visible, page.ID),
		Selected:   selected,
	}, nil
}

// Create inserts a new page under a generated id. A slug is derived from the
// name when none is given; derived slugs get a numeric suffix on collision.
func (s *PageService) Create(ctx context.Context, sess *Session, page entities.Page) (*entities.Page, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermPageCreate)
	if err != nil {
		return nil, err
	}

	page.Normalize()
	page.ID = uuid.New().String()
	page.Relations = graph.Dedupe(page.Relations)
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := s.assignSlug(ctx, &page); err != nil {
		return nil, err
	}

	now := s.now()
	page.CreatedAt = now
	page.UpdatedAt = now

	if err := s.relationalDB.InsertPage(ctx, &page); err != nil {
		return nil, fmt.Errorf("inserting page: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionPageCreate, actor.ID, page.ID, map[string]any{
		"name": page.Name,
		"kind": string(page.Kind),
	})
	s.index(ctx, &page)
	return &page, nil
}

// Update replaces a page record by id. Missing pages are created under the
// given id; existing pages keep their creation time.
func (s *PageService) Update(ctx context.Context, sess *Session, page entities.Page) (*entities.Page, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermPageUpdate)
	if err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, entities.NewValidationError("id", "id is required")
	}

	page.Normalize()
	page.Relations = graph.Dedupe(page.Relations)
	if err := page.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	existing, err := s.relationalDB.FindPageByID(ctx, page.ID)
	switch {
	case err == nil:
		page.CreatedAt = existing.CreatedAt
		if page.Slug == "" {
			page.Slug = existing.Slug
		}
	case errors.Is(err, entities.ErrNotFound):
		page.CreatedAt = now
	default:
		return nil, fmt.Errorf("looking up page: %w", err)
	}
	if err := s.assignSlug(ctx, &page); err != nil {
		return nil, err
	}
	page.UpdatedAt = now

	if err := s.relationalDB.UpsertPage(ctx, &page); err != nil {
		return nil, fmt.Errorf("saving page: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionPageUpdate, actor.ID, page.ID, map[string]any{
		"name": page.Name,
		"kind": string(page.Kind),
	})
	s.index(ctx, &page)
	return &page, nil
}

// Delete removes a page. Relations pointing at it are left dangling.
func (s *PageService) Delete(ctx context.Context, sess *Session, id string, kind entities.Kind) error {
	actor, err := s.authorizer.Authorize(ctx, sess, PermPageDelete)
	if err != nil {
		return err
	}
	if err := s.relationalDB.DeletePage(ctx, id, kind); err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionPageDelete, actor.ID, id, map[string]any{"kind": string(kind)})
	if s.indexer != nil {
		s.indexer.Remove(ctx, id)
	}
	return nil
}

// Relate adds or removes target in the page's relation list. Only pages in
// the current scope may be added; removal is always allowed.
func (s *PageService) Relate(ctx context.Context, sess *Session, id string, kind entities.Kind, target string, include bool, scope graph.Scope) (*entities.Page, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermPageRelate)
	if err != nil {
		return nil, err
	}

	page, err := s.relationalDB.FindPage(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	if include {
		visible, selected, err := s.List(ctx, scope)
		if err != nil {
			return nil, err
		}
		if !selected {
			return nil, entities.NewValidationError("universe", "select a universe before adding relations")
		}
		if !graph.IsCandidate(visible, page.ID, target) {
			return nil, entities.NewValidationError("target", fmt.Sprintf("%q is not a page in the current view", target))
		}
	}

	page.Relations = graph.ToggleRelation(page.Relations, target, include)
	page.UpdatedAt = s.now()
	if err := s.relationalDB.UpsertPage(ctx, page); err != nil {
		return nil, fmt.Errorf("saving relations: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionPageRelate, actor.ID, page.ID, map[string]any{
		"target":  target,
		"include": include,
	})
	s.index(ctx, page)
	return page, nil
}

// Count returns the number of stored pages across every scope.
func (s *PageService) Count(ctx context.Context) (int, error) {
	n, err := s.relationalDB.CountPages(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}

// Universes returns the distinct non-empty universe tags in use, sorted.
func (s *PageService) Universes(ctx context.Context) ([]string, error) {
	all, err := s.relationalDB.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	seen := make(map[string]struct{})
	for i := range all {
		if all[i].Universe != "" {
			seen[all[i].Universe] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// assignSlug fills or checks page.Slug. An explicit slug owned by another
// page is a conflict.
func (s *PageService) assignSlug(ctx context.Context, page *entities.Page) error {
	return assignSlug(ctx, s.relationalDB, page, nil)
}

func (s *PageService) index(ctx context.Context, page *entities.Page) {
	if s.indexer != nil {
		s.indexer.Index(ctx, page)
	}
}
