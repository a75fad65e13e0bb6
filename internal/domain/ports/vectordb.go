package ports

import (
	"context"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// PageVector is the indexed form of a page.
type PageVector struct {
	PageID    string
	Kind      entities.Kind
	Name      string
	Universe  string
	Canonical bool
	Embedding []float32
}

// SearchHit is a page id ranked by similarity.
type SearchHit struct {
	PageID string
	Score  float32
}

// VectorDB defines the interface for the semantic page index.
type VectorDB interface {
	// Save stores or replaces the vector of a page.
	Save(ctx context.Context, vec PageVector) error

	// SaveBatch stores multiple page vectors.
	SaveBatch(ctx context.Context, vecs []PageVector) error

	// Search returns the closest pages to embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error)

	// Delete removes the vector of a page.
	Delete(ctx context.Context, pageID string) error

	// DeleteAll empties the index.
	DeleteAll(ctx context.Context) error

	// Count returns the number of indexed pages.
	Count(ctx context.Context) (uint64, error)
}
