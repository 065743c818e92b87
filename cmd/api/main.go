package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "estate_reco/internal/adapters/http_server"
	"estate_reco/internal/adapters/observability"
	"estate_reco/internal/adapters/sparql"
	"estate_reco/internal/app"
	"estate_reco/internal/shared"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	// deps
	client, err := sparql.New(cfg.SPARQLEndpoint, cfg.OntologyPrefix, cfg.UpstreamRPS, cfg.UpstreamTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SPARQL client")
	}
	svc := app.NewRecommendationService(client, cfg.MaxCandidates, cfg.TopK)

	// http
	srv := server.New(cfg.RateLimitPerMin)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc, Reference: cfg.DefaultReference()})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("sparql", cfg.SPARQLEndpoint).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
