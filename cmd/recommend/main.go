package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"estate_reco/internal/adapters/observability"
	"estate_reco/internal/adapters/sparql"
	"estate_reco/internal/app"
	"estate_reco/internal/domain"
	"estate_reco/internal/shared"
)

// refList collects repeated -at flags.
type refList []string

func (r *refList) String() string     { return strings.Join(*r, " ") }
func (r *refList) Set(v string) error { *r = append(*r, v); return nil }

func main() {
	var refs refList
	flag.Var(&refs, "at", "reference point as lat,lon (repeatable; default from config)")
	resultsFile := flag.String("file", "", "read SPARQL JSON results from a file instead of the endpoint")
	flag.Parse()

	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	var src domain.ListingSource
	if *resultsFile != "" {
		src = sparql.NewFileSource(*resultsFile)
	} else {
		client, err := sparql.New(cfg.SPARQLEndpoint, cfg.OntologyPrefix, cfg.UpstreamRPS, cfg.UpstreamTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize SPARQL client")
		}
		src = client
	}
	svc := app.NewRecommendationService(src, cfg.MaxCandidates, cfg.TopK)

	points, err := parsePoints(refs, cfg.DefaultReference())
	if err != nil {
		log.Fatal().Err(err).Msg("bad -at flag")
	}

	log.Info().
		Int("points", len(points)).
		Int("workers", cfg.Workers).
		Msg("recommend starting")

	// each point is an independent request; replies are printed in flag order
	replies := make([]string, len(points))
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for i, ref := range points {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(i int, ref domain.Coordinate) {
			defer wg.Done()
			defer sem.Release(int64(1))
			replies[i] = svc.Reply(ctx, ref)
		}(i, ref)
	}

	wg.Wait()
	for i, ref := range points {
		if len(points) > 1 {
			fmt.Fprintf(os.Stdout, "=== %s ===\n", app.FormatReference(ref))
		}
		fmt.Fprintln(os.Stdout, replies[i])
	}
}

func parsePoints(refs []string, fallback domain.Coordinate) ([]domain.Coordinate, error) {
	if len(refs) == 0 {
		return []domain.Coordinate{fallback}, nil
	}
	out := make([]domain.Coordinate, 0, len(refs))
	for _, r := range refs {
		lat, lon, ok := strings.Cut(r, ",")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not lat,lon", domain.ErrInvalidReference, r)
		}
		c, err := app.ParseReference(lat, lon, fallback)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
