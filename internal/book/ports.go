package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for catalog storage.
type Repository interface {
	GetByISBN(ctx context.Context, isbn int64) (Row, error)
	List(ctx context.Context, q ListQuery) ([]Row, error)
	Count(ctx context.Context, f Filter) (int, error)
	// AuthorIDs returns the ids of authors whose name contains name, case-insensitively.
	AuthorIDs(ctx context.Context, name string) ([]int, error)
	SeriesNames(ctx context.Context) ([]string, error)
	// UpdateRatings applies delta to the stored tallies and recomputes the
	// count and average with w, atomically.
	UpdateRatings(ctx context.Context, isbn int64, delta Tally, w Weights) (Row, error)
	Create(ctx context.Context, nb NewBook, avg float64) (Row, error)
	Delete(ctx context.Context, isbn int64) (Row, error)
}

// SeriesCache stores the series name list between requests.
//
// Get returns a generation stamp alongside a miss. Set stores names only if
// no Invalidate happened since that stamp was read, so a slow reader cannot
// put back a list from before a write.
type SeriesCache interface {
	Get(ctx context.Context) (names []string, stamp int64, ok bool, err error)
	Set(ctx context.Context, names []string, stamp int64) error
	Invalidate(ctx context.Context) error
}
