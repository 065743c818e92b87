package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"estate_reco/internal/domain"
)

// DefaultMaxCandidates matches the LIMIT of the listings query.
const DefaultMaxCandidates = 100

// RecommendationService runs the fetch, normalize, score, rank and present
// pipeline. It keeps no per-request state, so one value can serve concurrent
// callers.
type RecommendationService struct {
	src           domain.ListingSource
	maxCandidates int
	topK          int
}

// NewRecommendationService clamps maxCandidates to DefaultMaxCandidates and
// topK to DefaultTopK; zero or negative values select those defaults.
func NewRecommendationService(src domain.ListingSource, maxCandidates, topK int) *RecommendationService {
	if maxCandidates <= 0 || maxCandidates > DefaultMaxCandidates {
		maxCandidates = DefaultMaxCandidates
	}
	if topK <= 0 || topK > DefaultTopK {
		topK = DefaultTopK
	}
	return &RecommendationService{src: src, maxCandidates: maxCandidates, topK: topK}
}

// Recommend fetches listings once and ranks them against ref. Fetch failures
// are returned wrapped in domain.ErrUpstream.
func (s *RecommendationService) Recommend(ctx context.Context, ref domain.Coordinate) (domain.Recommendation, error) {
	rows, err := s.src.FetchListings(ctx)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	if len(rows) > s.maxCandidates {
		log.Warn().Int("rows", len(rows)).Int("max", s.maxCandidates).Msg("truncating listings batch")
		rows = rows[:s.maxCandidates]
	}

	ranked := Rank(ScoreCandidates(NormalizeRecords(rows), ref))
	top := TopK(ranked, s.topK)

	log.Debug().
		Float64("lat", ref.Lat).
		Float64("lon", ref.Lon).
		Int("considered", len(rows)).
		Int("presented", len(top)).
		Msg("recommendation ranked")

	return domain.Recommendation{
		Reference:  ref,
		Considered: len(rows),
		Ranked:     ranked,
		Top:        top,
		Text:       Present(top),
	}, nil
}

// Reply returns the conversational answer for ref: the presented list or an
// error notice when listings could not be fetched.
func (s *RecommendationService) Reply(ctx context.Context, ref domain.Coordinate) string {
	rec, err := s.Recommend(ctx, ref)
	if err != nil {
		log.Error().Err(err).Msg("recommendation failed")
		return ErrorNotice(err)
	}
	return rec.Text
}

// ParseReference turns the caller's optional latitude and longitude into a
// reference point. If either value is missing the whole fallback pair is
// used; a lone latitude or longitude is never mixed with a default.
func ParseReference(lat, lon string, fallback domain.Coordinate) (domain.Coordinate, error) {
	lat, lon = strings.TrimSpace(lat), strings.TrimSpace(lon)
	if lat == "" || lon == "" {
		return fallback, nil
	}
	la, ok := parseFinite(lat)
	if !ok || la < -90 || la > 90 {
		return domain.Coordinate{}, fmt.Errorf("%w: latitude %q", domain.ErrInvalidReference, lat)
	}
	lo, ok := parseFinite(lon)
	if !ok || lo < -180 || lo > 180 {
		return domain.Coordinate{}, fmt.Errorf("%w: longitude %q", domain.ErrInvalidReference, lon)
	}
	return domain.Coordinate{Lat: la, Lon: lo}, nil
}

// FormatReference is the inverse of ParseReference for logs and flags.
func FormatReference(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}
