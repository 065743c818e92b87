package sparql

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"estate_reco/internal/domain"
)

// resultsDoc is the subset of the SPARQL 1.1 JSON results format we read.
type resultsDoc struct {
	Results struct {
		Bindings []domain.RawRecord `json:"bindings"`
	} `json:"results"`
}

// DecodeResults reads a SPARQL JSON results document.
func DecodeResults(r io.Reader) ([]domain.RawRecord, error) {
	var doc resultsDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}
	return doc.Results.Bindings, nil
}

// FileSource serves the rows of a saved results document, re-read on every
// call.
type FileSource struct{ path string }

func NewFileSource(path string) *FileSource { return &FileSource{path: path} }

func (f *FileSource) FetchListings(_ context.Context) ([]domain.RawRecord, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return DecodeResults(fh)
}
