// File path: internal/vector/memory_test.go
package vector

import (
	"context"
	"testing"
)

func seedIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx := NewMemoryIndex()
	docs := []Doc{
		{ID: "a", Content: "alpha", Attributes: map[string]string{"field": "name", "record_id": "1"}},
		{ID: "b", Content: "beta", Attributes: map[string]string{"field": "name", "record_id": "2"}},
		{ID: "c", Content: "gamma", Attributes: map[string]string{"field": "code", "record_id": "1"}},
	}
	vectors := [][]float32{
		{1, 0},
		{0.6, 0.8},
		{0, 1},
	}
	if err := idx.Upsert(context.Background(), docs, vectors); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	return idx
}

func TestMemoryIndexOrdersByScore(t *testing.T) {
	idx := seedIndex(t)
	results, err := idx.Search(context.Background(), []float32{1, 0}, Query{Limit: 3})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" || results[2].ID != "c" {
		t.Fatalf("unexpected order: %v", results)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not in descending score order: %v", results)
		}
	}
}

func TestMemoryIndexAttributeFilter(t *testing.T) {
	idx := seedIndex(t)
	results, err := idx.Search(context.Background(), []float32{1, 0}, Query{
		Limit:  10,
		Filter: map[string]string{"field": "name"},
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 filtered results, got %d", len(results))
	}
	for _, res := range results {
		if res.Attributes["field"] != "name" {
			t.Fatalf("filter leaked: %v", res)
		}
	}
}

func TestMemoryIndexScoreThreshold(t *testing.T) {
	idx := seedIndex(t)
	results, err := idx.Search(context.Background(), []float32{1, 0}, Query{
		Limit:          10,
		ScoreThreshold: 0.5,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected threshold to drop orthogonal doc, got %v", results)
	}
	for _, res := range results {
		if res.Score < 0.5 {
			t.Fatalf("result below threshold: %v", res)
		}
	}
}

func TestMemoryIndexUpsertReplacesAndDelete(t *testing.T) {
	idx := seedIndex(t)
	err := idx.Upsert(context.Background(), []Doc{
		{ID: "a", Content: "alpha2", Attributes: map[string]string{"field": "name"}},
	}, [][]float32{{0, 1}})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("upsert of existing id must replace, len=%d", idx.Len())
	}
	results, err := idx.Search(context.Background(), []float32{0, 1}, Query{Limit: 1})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if results[0].Content != "alpha2" && results[0].ID != "c" {
		t.Fatalf("unexpected top result: %v", results[0])
	}

	if err := idx.Delete(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 doc after delete, got %d", idx.Len())
	}
}
