package mocks

import (
	"context"

	"github.com/ersonp/watlas/internal/domain/ports"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	Vectors map[string]ports.PageVector
	Hits    []ports.SearchHit
	Err     error

	// Call tracking
	SaveCallCount      int
	SaveBatchCallCount int
	SaveBatchLast      []ports.PageVector
	DeleteCallCount    int
	DeleteAllCallCount int
	SearchLastLimit    int
}

// NewVectorDB creates a new mock VectorDB.
func NewVectorDB() *VectorDB {
	return &VectorDB{Vectors: make(map[string]ports.PageVector)}
}

// Save stores a single page vector.
func (m *VectorDB) Save(_ context.Context, vec ports.PageVector) error {
	m.SaveCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.ensure()
	m.Vectors[vec.PageID] = vec
	return nil
}

// SaveBatch stores multiple page vectors.
func (m *VectorDB) SaveBatch(_ context.Context, vecs []ports.PageVector) error {
	m.SaveBatchCallCount++
	m.SaveBatchLast = vecs
	if m.Err != nil {
		return m.Err
	}
	m.ensure()
	for _, v := range vecs {
		m.Vectors[v.PageID] = v
	}
	return nil
}

// Search returns the configured hits, truncated to limit.
func (m *VectorDB) Search(_ context.Context, _ []float32, limit int) ([]ports.SearchHit, error) {
	m.SearchLastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > len(m.Hits) {
		return m.Hits, nil
	}
	return m.Hits[:limit], nil
}

// Delete removes a page vector.
func (m *VectorDB) Delete(_ context.Context, pageID string) error {
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	delete(m.Vectors, pageID)
	return nil
}

// DeleteAll removes every vector.
func (m *VectorDB) DeleteAll(_ context.Context) error {
	m.DeleteAllCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Vectors = make(map[string]ports.PageVector)
	return nil
}

// Count returns the number of stored vectors.
func (m *VectorDB) Count(_ context.Context) (uint64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return uint64(len(m.Vectors)), nil
}

func (m *VectorDB) ensure() {
	if m.Vectors == nil {
		m.Vectors = make(map[string]ports.PageVector)
	}
}
