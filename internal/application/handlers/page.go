package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/services"
)

// PageHandler handles page and timeline operations at the application layer.
type PageHandler struct {
	pages    *services.PageService
	timeline *services.TimelineService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(pages *services.PageService, timeline *services.TimelineService) *PageHandler {
	return &PageHandler{
		pages:    pages,
		timeline: timeline,
	}
}

// PageInput is the authoring form of a page, shared by the CLI and the HTTP API.
type PageInput struct {
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Slug      string             `json:"slug,omitempty"`
	Canonical *bool              `json:"canonical,omitempty"` // Defaults to true
	Universe  string             `json:"universe,omitempty"`
	Relations []string           `json:"relations,omitempty"`
	Sections  []entities.Section `json:"sections,omitempty"`
	ImageURL  string             `json:"image_url,omitempty"`
}

// toPage converts the input into a page. Kind names are normalized,
// including legacy names.
func (in PageInput) toPage() (entities.Page, error) {
	kind, err := parseKind(in.Kind)
	if err != nil {
		return entities.Page{}, err
	}
	canonical := true
	if in.Canonical != nil {
		canonical = *in.Canonical
	}
	return entities.Page{
		Name:      in.Name,
		Kind:      kind,
		Slug:      in.Slug,
		Canonical: canonical,
		Universe:  in.Universe,
		Relations: in.Relations,
		Sections:  in.Sections,
		ImageURL:  in.ImageURL,
	}, nil
}

// parseKind wraps entities.ParseKind in a field-level validation error.
func parseKind(s string) (entities.Kind, error) {
	k, err := entities.ParseKind(s)
	if err != nil {
		return "", entities.NewValidationError("kind",
			fmt.Sprintf("unknown kind %q (valid: %s)", s, strings.Join(entities.KindNames(), ", ")))
	}
	return k, nil
}

// PageListResult contains the pages visible in a scope.
type PageListResult struct {
	Pages    []entities.Page `json:"pages"`
	Total    int             `json:"total"`
	Selected bool            `json:"selected"` // False until a universe has been chosen
}

// HandleList returns the pages visible in scope, optionally restricted to
// one kind.
func (h *PageHandler) HandleList(ctx context.Context, scope graph.Scope, kind string) (*PageListResult, error) {
	pages, selected, err := h.pages.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	if kind != "" {
		k, err := parseKind(kind)
		if err != nil {
			return nil, err
		}
		filtered := make([]entities.Page, 0, len(pages))
		for _, p := range pages {
			if p.Kind == k {
				filtered = append(filtered, p)
			}
		}
		pages = filtered
	}
	if pages == nil {
		pages = []entities.Page{}
	}

	return &PageListResult{
		Pages:    pages,
		Total:    len(pages),
		Selected: selected,
	}, nil
}

// HandleShow returns the detail view of a page. With an empty kind, ref may
// be an id or a slug.
func (h *PageHandler) HandleShow(ctx context.Context, ref, kind string, scope graph.Scope) (*services.PageDetail, error) {
	id, k, err := h.resolve(ctx, ref, kind)
	if err != nil {
		return nil, err
	}
	return h.pages.Detail(ctx, id, k, scope)
}

// resolve turns a user reference into the (id, kind) key.
func (h *PageHandler) resolve(ctx context.Context, ref, kind string) (string, entities.Kind, error) {
	if kind != "" {
		k, err := parseKind(kind)
		if err != nil {
			return "", "", err
		}
		return ref, k, nil
	}
	page, err := h.pages.Find(ctx, ref)
	if err != nil {
		return "", "", err
	}
	return page.ID, page.Kind, nil
}

// HandleCreate creates a page from the input.
func (h *PageHandler) HandleCreate(ctx context.Context, sess *services.Session, in PageInput) (*entities.Page, error) {
	page, err := in.toPage()
	if err != nil {
		return nil, err
	}
	return h.pages.Create(ctx, sess, page)
}

// HandleUpdate replaces the page stored under (id, kind). The page must
// already exist under that kind; pages are only created by HandleCreate.
// An empty input kind keeps the stored kind.
func (h *PageHandler) HandleUpdate(ctx context.Context, sess *services.Session, id, kind string, in PageInput) (*entities.Page, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	if _, err := h.pages.Get(ctx, id, k); err != nil {
		return nil, err
	}

	if in.Kind == "" {
		in.Kind = string(k)
	}
	page, err := in.toPage()
	if err != nil {
		return nil, err
	}
	page.ID = id
	return h.pages.Update(ctx, sess, page)
}

// HandleEdit applies fn to the stored page and saves the result. Used by
// the CLI, which edits a few fields at a time.
func (h *PageHandler) HandleEdit(ctx context.Context, sess *services.Session, ref, kind string, fn func(*entities.Page) error) (*entities.Page, error) {
	id, k, err := h.resolve(ctx, ref, kind)
	if err != nil {
		return nil, err
	}
	page, err := h.pages.Get(ctx, id, k)
	if err != nil {
		return nil, err
	}
	edited := page.Clone()
	if err := fn(&edited); err != nil {
		return nil, err
	}
	return h.pages.Update(ctx, sess, edited)
}

// HandleDelete removes a page.
func (h *PageHandler) HandleDelete(ctx context.Context, sess *services.Session, ref, kind string) error {
	id, k, err := h.resolve(ctx, ref, kind)
	if err != nil {
		return err
	}
	return h.pages.Delete(ctx, sess, id, k)
}

// HandleRelate adds or removes target in the relation list of a page. The
// target may be given by id or slug.
func (h *PageHandler) HandleRelate(ctx context.Context, sess *services.Session, ref, kind, target string, include bool, scope graph.Scope) (*entities.Page, error) {
	id, k, err := h.resolve(ctx, ref, kind)
	if err != nil {
		return nil, err
	}
	targetID := target
	if t, err := h.pages.Find(ctx, target); err == nil {
		targetID = t.ID
	} else if !errors.Is(err, entities.ErrNotFound) {
		return nil, err
	}
	return h.pages.Relate(ctx, sess, id, k, targetID, include, scope)
}

// HandleTimeline returns the chronological projection of the scope.
func (h *PageHandler) HandleTimeline(ctx context.Context, scope graph.Scope) (*services.Timeline, error) {
	return h.timeline.Timeline(ctx, scope)
}

// HandleCount returns the number of stored pages.
func (h *PageHandler) HandleCount(ctx context.Context) (int, error) {
	return h.pages.Count(ctx)
}

// HandleUniverses returns the universes used by pages merged with the
// registered ones, sorted.
func (h *PageHandler) HandleUniverses(ctx context.Context, registered []string) ([]string, error) {
	used, err := h.pages.Universes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing universes: %w", err)
	}

	seen := make(map[string]bool, len(used)+len(registered))
	result := make([]string, 0, len(used)+len(registered))
	for _, list := range [][]string{used, registered} {
		for _, u := range list {
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			result = append(result, u)
		}
	}
	sort.Strings(result)
	return result, nil
}
