package app

import (
	"fmt"

	"estate_reco/internal/domain"
)

// NearbyRadiusKm is the distance from the reference point that still earns the
// proximity point.
const NearbyRadiusKm = 5.0

// ScoreCandidate awards one point for being within NearbyRadiusKm of ref and
// one point per facility and surrounding, with a reason for each point.
// Price, rooms and size never contribute.
func ScoreCandidate(c domain.Candidate, ref domain.Coordinate) domain.ScoredCandidate {
	sc := domain.ScoredCandidate{
		Candidate: c,
		Reasons:   make([]string, 0, 1+len(c.Facilities)+len(c.Surroundings)),
	}

	if c.Coordinate != nil {
		if d := Distance(ref, *c.Coordinate); d <= NearbyRadiusKm {
			sc.Score++
			sc.Reasons = append(sc.Reasons, fmt.Sprintf("🚶 Cách nơi làm việc %.1fkm", d))
		}
	}

	sc.Score += len(c.Facilities)
	for _, f := range c.Facilities {
		sc.Reasons = append(sc.Reasons, "✨ Có "+f)
	}

	sc.Score += len(c.Surroundings)
	for _, s := range c.Surroundings {
		sc.Reasons = append(sc.Reasons, "🏢 Gần "+s)
	}

	return sc
}

// ScoreCandidates scores a batch in input order.
func ScoreCandidates(cs []domain.Candidate, ref domain.Coordinate) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(cs))
	for _, c := range cs {
		out = append(out, ScoreCandidate(c, ref))
	}
	return out
}
