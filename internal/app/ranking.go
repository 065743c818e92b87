package app

import (
	"sort"

	"estate_reco/internal/domain"
)

// DefaultTopK is how many candidates are presented.
const DefaultTopK = 5

// Rank returns a copy of scored ordered by score, highest first. Equal scores
// keep their input order.
func Rank(scored []domain.ScoredCandidate) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// TopK returns the first k entries of ranked, or all of them when there are
// fewer than k.
func TopK(ranked []domain.ScoredCandidate, k int) []domain.ScoredCandidate {
	if k < 0 {
		k = 0
	}
	if len(ranked) < k {
		k = len(ranked)
	}
	return ranked[:k]
}
