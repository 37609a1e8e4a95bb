// File path: internal/rerank/mmr.go
package rerank

import (
	"github.com/nicodishanthj/semmatch/internal/embedding"
)

// Select orders candidate vectors by maximal marginal relevance against
// the query. lambda trades relevance (1 keeps pure similarity order)
// against diversity (0 maximizes anti-redundancy). Returned indices
// reference the candidates slice; ties break on the lower original
// index. Runs in O(limit * candidates) by keeping, per remaining
// candidate, its best similarity to anything already selected.
func Select(query []float32, candidates [][]float32, lambda float64, limit int) []int {
	if len(candidates) == 0 || limit <= 0 {
		return nil
	}
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	if limit > len(candidates) {
		limit = len(candidates)
	}

	simToQuery := make([]float64, len(candidates))
	for i, cand := range candidates {
		simToQuery[i] = embedding.Cosine(query, cand)
	}

	selected := make([]int, 0, limit)
	picked := make([]bool, len(candidates))
	bestToSelected := make([]float64, len(candidates))

	for len(selected) < limit {
		bestIdx := -1
		bestScore := 0.0
		for i := range candidates {
			if picked[i] {
				continue
			}
			penalty := 0.0
			if len(selected) > 0 {
				penalty = bestToSelected[i]
			}
			score := lambda*simToQuery[i] - (1-lambda)*penalty
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		if bestIdx == -1 {
			break
		}
		picked[bestIdx] = true
		selected = append(selected, bestIdx)
		for i := range candidates {
			if picked[i] {
				continue
			}
			if sim := embedding.Cosine(candidates[i], candidates[bestIdx]); sim > bestToSelected[i] {
				bestToSelected[i] = sim
			}
		}
	}
	return selected
}
