package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "breaker_transitions_total", Help: "Circuit breaker state changes."},
		[]string{"service", "state"},
	)
	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "estate", Name: "recommendations_total", Help: "Recommendation requests by outcome."},
		[]string{"outcome"}, // outcome: ok|empty|upstream_error
	)
	CandidatesConsidered = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "candidates_considered",
			Help:    "Listings scored per recommendation.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)
	CandidateScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "estate", Name: "presented_candidate_score",
			Help:    "Scores of presented candidates.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
	)
)

// Serve exposes h under /metrics on a separate listener in the background.
// Empty addr disables it.
func Serve(addr string, h http.Handler) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		BreakerTransitions, Recommendations, CandidatesConsidered, CandidateScores)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveBreaker(service, state string) {
	BreakerTransitions.WithLabelValues(service, state).Inc()
}

// ObserveRecommendation records one finished request. scores are those of the
// presented candidates.
func ObserveRecommendation(outcome string, considered int, scores []int) {
	Recommendations.WithLabelValues(outcome).Inc()
	if outcome == "upstream_error" {
		return
	}
	CandidatesConsidered.Observe(float64(considered))
	for _, s := range scores {
		CandidateScores.Observe(float64(s))
	}
}
