// File path: internal/embedding/aggregate.go
package embedding

import (
	"fmt"
	"math"

	"github.com/nicodishanthj/semmatch/internal/common"
)

// Aggregate merges per-chunk vectors into a single document vector: the
// component-wise mean weighted by each chunk's length, normalized to unit
// Euclidean norm. Weights default to 1 when the slice is shorter than the
// vector list or holds non-positive entries.
func Aggregate(vectors [][]float32, weights []int) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding: no chunk vectors to aggregate: %w", common.ErrEmptyInput)
	}
	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("embedding: chunk %d has dimension %d, expected %d: %w",
				i, len(vec), dim, common.ErrDimensionMismatch)
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("embedding: zero-dimension chunk vectors: %w", common.ErrEmptyInput)
	}

	sum := make([]float64, dim)
	var totalWeight float64
	for i, vec := range vectors {
		w := 1.0
		if i < len(weights) && weights[i] > 0 {
			w = float64(weights[i])
		}
		totalWeight += w
		for j, v := range vec {
			sum[j] += w * float64(v)
		}
	}
	for j := range sum {
		sum[j] /= totalWeight
	}

	var norm float64
	for _, v := range sum {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dim)
	for j, v := range sum {
		if norm > 0 {
			v /= norm
		}
		out[j] = float32(v)
	}
	return out, nil
}

// Cosine computes the cosine similarity of two vectors. A zero vector is
// defined to have similarity 0 against anything, never NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
