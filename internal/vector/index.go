// File path: internal/vector/index.go
package vector

import "context"

// Doc is one stored point: a document vector plus the attributes the
// engine filters on (record id, field name, source text).
type Doc struct {
	ID         string
	Content    string
	Attributes map[string]string
}

// Query narrows a similarity search. Filter entries are equality
// constraints over document attributes; a zero ScoreThreshold keeps
// everything.
type Query struct {
	Limit          int
	ScoreThreshold float32
	Filter         map[string]string
}

// SearchResult is one similarity match, score in [0,1], ordered by
// descending score by every Index implementation.
type SearchResult struct {
	ID         string
	Score      float32
	Content    string
	Attributes map[string]string
}

// Index is the storage contract the engine depends on. Implementations
// own persistence entirely; the engine never sees their layout.
type Index interface {
	Upsert(ctx context.Context, docs []Doc, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, query Query) ([]SearchResult, error)
	Delete(ctx context.Context, ids []string) error
}
