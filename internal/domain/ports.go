package domain

import (
	"context"
	"errors"
)

var (
	// ErrUpstream wraps every failure to obtain listings from the data source.
	ErrUpstream = errors.New("listings upstream failed")
	// ErrInvalidReference means the caller supplied unusable coordinates.
	ErrInvalidReference = errors.New("invalid reference coordinates")
)

// ListingSource returns the raw rows of the listings query. It is called
// once per request.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]RawRecord, error)
}
