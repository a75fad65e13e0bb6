package handlers

import (
	"context"

	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/services"
)

// SearchHandler handles semantic search over pages.
type SearchHandler struct {
	service *services.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// SearchResult contains ranked pages visible in the scope.
type SearchResult struct {
	Query    string                  `json:"query"`
	Results  []services.SearchResult `json:"results"`
	Selected bool                    `json:"selected"`
}

// Handle runs a semantic search. A non-positive limit uses the default.
func (h *SearchHandler) Handle(ctx context.Context, query string, scope graph.Scope, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = services.DefaultSearchLimit
	}
	results, selected, err := h.service.Search(ctx, query, scope, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []services.SearchResult{}
	}
	return &SearchResult{Query: query, Results: results, Selected: selected}, nil
}

// HandleReindex rebuilds the index. With recreate the collection is
// dropped and created again, which also picks up a new vector size.
func (h *SearchHandler) HandleReindex(ctx context.Context, sess *services.Session, recreate bool) (*services.ReindexResult, error) {
	return h.service.Reindex(ctx, sess, services.ReindexOptions{Recreate: recreate})
}

// HandleCount returns the number of indexed pages.
func (h *SearchHandler) HandleCount(ctx context.Context) (uint64, error) {
	return h.service.Count(ctx)
}
