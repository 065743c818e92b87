// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"estate_reco/internal/adapters/observability"
	"estate_reco/internal/app"
	"estate_reco/internal/domain"
)

type Handlers struct {
	Svc       *app.RecommendationService
	Reference domain.Coordinate // used when the caller sends no location
}

var validate = validator.New()

type recommendationQuery struct {
	Lat    string `validate:"omitempty,latitude"`
	Lon    string `validate:"omitempty,longitude"`
	Format string `validate:"omitempty,oneof=text json"`
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/recommendations", h.recommend)
}

// selectFormat honors ?format first, then an Accept header asking for JSON.
func selectFormat(q recommendationQuery, accept string) string {
	if q.Format != "" {
		return q.Format
	}
	if strings.Contains(strings.ToLower(accept), "application/json") {
		return "json"
	}
	return "text"
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Error().Err(err).Msg("write text response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := recommendationQuery{Lat: qs.Get("lat"), Lon: qs.Get("lon"), Format: qs.Get("format")}
	if err := validate.Struct(q); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	format := selectFormat(q, r.Header.Get("Accept"))

	ref, err := app.ParseReference(q.Lat, q.Lon, h.Reference)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid reference", err.Error())
		return
	}

	rec, err := h.Svc.Recommend(r.Context(), ref)
	if err != nil {
		observability.ObserveRecommendation("upstream_error", 0, nil)
		log.Error().Err(err).Str("ref", app.FormatReference(ref)).Msg("recommendation failed")
		status := http.StatusBadGateway
		if !errors.Is(err, domain.ErrUpstream) {
			status = http.StatusInternalServerError
		}
		if format == "text" {
			writeText(w, status, app.ErrorNotice(err))
			return
		}
		writeProblem(w, status, "Upstream Error", app.ErrorNotice(err))
		return
	}

	outcome := "ok"
	if len(rec.Top) == 0 {
		outcome = "empty"
	}
	scores := make([]int, 0, len(rec.Top))
	for _, sc := range rec.Top {
		scores = append(scores, sc.Score)
	}
	observability.ObserveRecommendation(outcome, rec.Considered, scores)

	if format == "text" {
		writeText(w, http.StatusOK, rec.Text)
		return
	}

	etag, body := calcETagAndBody(rec)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write recommendations body")
	}
}
