// File path: internal/vector/memory.go
package vector

import (
	"context"
	"sort"
	"sync"

	"github.com/nicodishanthj/semmatch/internal/embedding"
)

// MemoryIndex is an in-process Index over a cosine scan. It backs tests
// and deployments without a reachable vector database; the scan is linear
// and fine for corpora in the tens of thousands.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]memoryPoint
}

type memoryPoint struct {
	doc    Doc
	vector []float32
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]memoryPoint)}
}

func (m *MemoryIndex) Upsert(ctx context.Context, docs []Doc, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, doc := range docs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		var vec []float32
		if i < len(vectors) {
			vec = append([]float32(nil), vectors[i]...)
		}
		attrs := make(map[string]string, len(doc.Attributes))
		for k, v := range doc.Attributes {
			attrs[k] = v
		}
		doc.Attributes = attrs
		m.docs[doc.ID] = memoryPoint{doc: doc, vector: vec}
	}
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, query Query) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]SearchResult, 0, limit)
	for _, point := range m.docs {
		if !matchesFilter(point.doc.Attributes, query.Filter) {
			continue
		}
		score := float32(embedding.Cosine(vector, point.vector))
		if score < 0 {
			score = 0
		}
		if score < query.ScoreThreshold {
			continue
		}
		results = append(results, SearchResult{
			ID:         point.doc.ID,
			Score:      score,
			Content:    point.doc.Content,
			Attributes: point.doc.Attributes,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].ID < results[j].ID
		}
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryIndex) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.docs, id)
	}
	return nil
}

// Len reports the number of stored points.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func matchesFilter(attrs, filter map[string]string) bool {
	for k, want := range filter {
		if attrs[k] != want {
			return false
		}
	}
	return true
}

var _ Index = (*MemoryIndex)(nil)
