package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// DefaultSearchLimit is the default number of results to return.
const DefaultSearchLimit = 10

const (
	// Hits are filtered by scope after the vector search, so fetch extra.
	searchOversample = 4
	reindexBatchSize = 64
)

// SearchResult is a page ranked by similarity to the query.
type SearchResult struct {
	Page  entities.Page `json:"page"`
	Score float32       `json:"score"`
}

// SearchService keeps the semantic page index and queries it.
type SearchService struct {
	relationalDB ports.RelationalDB
	embedder     ports.Embedder
	vectorDB     ports.VectorDB
	authorizer   *Authorizer

	// collections is nil when the index has no collection lifecycle.
	collections ports.CollectionManager
	vectorSize  uint64
}

// NewSearchService creates a new search service.
func NewSearchService(relationalDB ports.RelationalDB, embedder ports.Embedder, vectorDB ports.VectorDB, authorizer *Authorizer) *SearchService {
	return &SearchService{
		relationalDB: relationalDB,
		embedder:     embedder,
		vectorDB:     vectorDB,
		authorizer:   authorizer,
	}
}

// WithCollection lets Reindex create, and on request recreate, the
// collection holding the index.
func (s *SearchService) WithCollection(collections ports.CollectionManager, vectorSize uint64) *SearchService {
	s.collections = collections
	s.vectorSize = vectorSize
	return s
}

// ReindexOptions controls a rebuild of the index.
type ReindexOptions struct {
	// Recreate drops and recreates the collection instead of clearing it.
	Recreate bool
}

// ReindexResult reports a finished rebuild.
type ReindexResult struct {
	Pages   int    `json:"pages"`
	Indexed uint64 `json:"indexed"`
}

// Index embeds and stores a page. Failures are logged; the index catches up
// on the next reindex.
func (s *SearchService) Index(ctx context.Context, page *entities.Page) {
	embedding, err := s.embedder.Embed(ctx, PageText(page))
	if err != nil {
		log.Warn().Err(err).Str("page_id", page.ID).Msg("embedding page failed")
		return
	}
	if err := s.vectorDB.Save(ctx, toVector(page, embedding)); err != nil {
		log.Warn().Err(err).Str("page_id", page.ID).Msg("indexing page failed")
	}
}

// Remove drops a page from the index. Failures are logged.
func (s *SearchService) Remove(ctx context.Context, pageID string) {
	if err := s.vectorDB.Delete(ctx, pageID); err != nil {
		log.Warn().Err(err).Str("page_id", pageID).Msg("removing page from index failed")
	}
}

// Count returns the number of indexed pages.
func (s *SearchService) Count(ctx context.Context) (uint64, error) {
	n, err := s.vectorDB.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting indexed pages: %w", err)
	}
	return n, nil
}

// Reindex rebuilds the index from every page in the store. Every page is
// embedded before the index is touched, so an embedding failure leaves the
// previous index in place.
func (s *SearchService) Reindex(ctx context.Context, sess *Session, opts ReindexOptions) (*ReindexResult, error) {
	if _, err := s.authorizer.Authorize(ctx, sess, PermSearchReindex); err != nil {
		return nil, err
	}
	if opts.Recreate && s.collections == nil {
		return nil, entities.NewValidationError("recreate", "the search index has no collection to recreate")
	}

	pages, err := s.relationalDB.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	vecs, err := s.embedPages(ctx, pages)
	if err != nil {
		return nil, err
	}

	if err := s.resetIndex(ctx, opts.Recreate); err != nil {
		return nil, err
	}
	for start := 0; start < len(vecs); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(vecs))
		if err := s.vectorDB.SaveBatch(ctx, vecs[start:end]); err != nil {
			return nil, fmt.Errorf("saving vectors: %w", err)
		}
	}

	indexed, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().Int("pages", len(pages)).Uint64("indexed", indexed).Bool("recreated", opts.Recreate).Msg("search index rebuilt")
	return &ReindexResult{Pages: len(pages), Indexed: indexed}, nil
}

func (s *SearchService) embedPages(ctx context.Context, pages []entities.Page) ([]ports.PageVector, error) {
	vecs := make([]ports.PageVector, 0, len(pages))
	for start := 0; start < len(pages); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(pages))
		batch := pages[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = PageText(&batch[i])
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("generating embeddings: %w", err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("generating embeddings: got %d for %d pages", len(embeddings), len(batch))
		}

		for i := range batch {
			vecs = append(vecs, toVector(&batch[i], embeddings[i]))
		}
	}
	return vecs, nil
}

// resetIndex leaves an empty index behind: a fresh collection when
// recreating, otherwise the existing collection with its points removed.
func (s *SearchService) resetIndex(ctx context.Context, recreate bool) error {
	if s.collections != nil {
		if recreate {
			if err := s.collections.DeleteCollection(ctx); err != nil {
				return fmt.Errorf("dropping collection: %w", err)
			}
		}
		if err := s.collections.EnsureCollection(ctx, s.vectorSize); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}
		if recreate {
			return nil
		}
	}
	if err := s.vectorDB.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	return nil
}

// Search finds pages semantically similar to the query. Results are limited
// to the pages visible in scope; selected is false when no universe has been
// chosen.
func (s *SearchService) Search(ctx context.Context, query string, scope graph.Scope, limit int) (results []SearchResult, selected bool, err error) {
	if strings.TrimSpace(query) == "" {
		return nil, false, entities.NewValidationError("q", "query is required")
	}
	if !scope.Selected() {
		return []SearchResult{}, false, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, true, fmt.Errorf("generating query embedding: %w", err)
	}

	hits, err := s.vectorDB.Search(ctx, embedding, limit*searchOversample)
	if err != nil {
		return nil, true, fmt.Errorf("searching pages: %w", err)
	}

	all, err := s.relationalDB.ListPages(ctx)
	if err != nil {
		return nil, true, fmt.Errorf("listing pages: %w", err)
	}
	visible, _ := graph.Filter(all, scope)
	index := graph.Index(visible)

	results = make([]SearchResult, 0, limit)
	for _, hit := range hits {
		i, ok := index[hit.PageID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{Page: visible[i], Score: hit.Score})
		if len(results) == limit {
			break
		}
	}
	return results, true, nil
}

// PageText converts a page to searchable text for embedding.
func PageText(page *entities.Page) string {
	parts := []string{page.Name, string(page.Kind)}
	if page.Universe != "" {
		parts = append(parts, page.Universe)
	}
	for _, sec := range page.Sections {
		if sec.Title != "" {
			parts = append(parts, sec.Title)
		}
		if sec.Content != "" {
			parts = append(parts, sec.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func toVector(page *entities.Page, embedding []float32) ports.PageVector {
	return ports.PageVector{
		PageID:    page.ID,
		Kind:      page.Kind,
		Name:      page.Name,
		Universe:  page.Universe,
		Canonical: page.Canonical,
		Embedding: embedding,
	}
}
