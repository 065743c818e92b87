package sparql_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"estate_reco/internal/adapters/sparql"
	"estate_reco/internal/domain"
)

const resultsJSON = `{
  "head": {"vars": ["project_name", "geo", "all_facilities", "price"]},
  "results": {"bindings": [
    {
      "project_name": {"type": "literal", "value": "Sky Garden"},
      "geo": {"type": "literal", "value": "10.85,106.79"},
      "all_facilities": {"type": "literal", "value": "Pool, Gym"},
      "price": {"type": "literal", "datatype": "http://www.w3.org/2001/XMLSchema#decimal", "value": "2500000000"}
    },
    {
      "project_name": {"type": "literal", "xml:lang": "vi", "value": "Căn hộ B"},
      "all_facilities": {"type": "literal", "value": ""}
    }
  ]}
}`

func TestClient_FetchListings_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("query"); !strings.Contains(q, "?project rdf:type :Project") || !strings.Contains(q, "LIMIT 100") {
			t.Errorf("unexpected query: %s", q)
		}
		if got := r.Header.Get("Accept"); got != "application/sparql-results+json" {
			t.Errorf("unexpected Accept %q", got)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			w.Header().Set("Content-Type", "application/sparql-results+json")
			_, _ = w.Write([]byte(resultsJSON))
		}
	}))
	defer ts.Close()

	cl, err := sparql.New(ts.URL, "", 100, time.Second) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := cl.FetchListings(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][domain.FieldProjectName].Value != "Sky Garden" || rows[0][domain.FieldGeo].Value != "10.85,106.79" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if _, ok := rows[1][domain.FieldGeo]; ok {
		t.Fatalf("unbound geo must be missing from the row")
	}
	if b, ok := rows[1][domain.FieldFacilities]; !ok || b.Value != "" {
		t.Fatalf("bound empty aggregate must be kept: %+v", rows[1])
	}
	if rows[1][domain.FieldProjectName].Lang != "vi" {
		t.Fatalf("language tag lost: %+v", rows[1][domain.FieldProjectName])
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_BadQueryIsNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "Parse error: Encountered \" <VAR1>", http.StatusBadRequest)
	}))
	defer ts.Close()

	cl, err := sparql.New(ts.URL, "", 100, time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err = cl.Select(context.Background(), "SELECT nonsense")
	if !errors.Is(err, sparql.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), "Parse error") {
		t.Fatalf("expected endpoint detail in error, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single call, got %d", n)
	}
}

func TestClient_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := sparql.New(ts.URL, "", 100, time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err = cl.FetchListings(ctx); !errors.Is(err, sparql.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTeapot) // not retried, counts as a failure
	}))
	defer ts.Close()

	cl, err := sparql.New(ts.URL, "", 1000, time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := cl.FetchListings(context.Background()); err == nil {
			t.Fatalf("expected failure on call %d", i)
		}
	}

	_, err = cl.FetchListings(context.Background())
	if !errors.Is(err, sparql.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once the breaker is open, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 5 {
		t.Fatalf("open breaker must not reach the endpoint, got %d hits", n)
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := sparql.New("", "", 1, time.Second); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
	if _, err := sparql.New("not a url", "", 1, time.Second); err == nil {
		t.Fatalf("expected error for invalid endpoint")
	}
}

func TestListingsQuery_Prefix(t *testing.T) {
	q := sparql.ListingsQuery("http://example.org/onto#")
	if !strings.Contains(q, "PREFIX : <http://example.org/onto#>") {
		t.Fatalf("prefix not applied:\n%s", q)
	}
	if !strings.Contains(sparql.ListingsQuery(""), sparql.DefaultOntologyPrefix) {
		t.Fatalf("default prefix not applied")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(resultsJSON), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := sparql.NewFileSource(path).FetchListings(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if _, err := sparql.NewFileSource(filepath.Join(t.TempDir(), "missing.json")).FetchListings(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDecodeResults_Malformed(t *testing.T) {
	if _, err := sparql.DecodeResults(strings.NewReader("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
