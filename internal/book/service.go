package book

import (
	"context"
	"strings"

	"bookcatalog/internal/logging"
	"bookcatalog/internal/metrics"
)

// Service provides catalog business logic.
type Service struct {
	repo    Repository
	cache   SeriesCache
	weights Weights
}

// NewService creates a catalog service. A nil cache disables series caching.
func NewService(repo Repository, cache SeriesCache, weights Weights) *Service {
	if cache == nil {
		cache = NoopSeriesCache{}
	}
	return &Service{repo: repo, cache: cache, weights: weights}
}

func (s *Service) GetByISBN(ctx context.Context, isbn int64) (Entry, error) {
	row, err := s.repo.GetByISBN(ctx, isbn)
	if err != nil {
		return Entry{}, err
	}
	return toEntry(row), nil
}

// listAll runs an unpaged listing and reports ErrNotFound when it is empty.
func (s *Service) listAll(ctx context.Context, f Filter, o Order) ([]Entry, error) {
	rows, err := s.repo.List(ctx, ListQuery{Filter: f, Order: o})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return toEntries(rows), nil
}

func (s *Service) listPage(ctx context.Context, f Filter, o Order, p Page) ([]Entry, Pagination, error) {
	rows, err := s.repo.List(ctx, ListQuery{Filter: f, Order: o, Page: &p})
	if err != nil {
		return nil, Pagination{}, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return toEntries(rows), newPagination(total, p), nil
}

func (s *Service) ListByYear(ctx context.Context, yearMin, yearMax int) ([]Entry, error) {
	return s.listAll(ctx, Filter{YearMin: &yearMin, YearMax: &yearMax}, OrderYear)
}

// ListByTitle matches title as a case-insensitive substring.
func (s *Service) ListByTitle(ctx context.Context, title string) ([]Entry, error) {
	return s.listAll(ctx, Filter{Title: strings.TrimSpace(title)}, OrderTitle)
}

// ListByRating returns books whose average lies in [ratingMin, ratingMax], best first.
func (s *Service) ListByRating(ctx context.Context, ratingMin, ratingMax float64, p Page) ([]Entry, Pagination, error) {
	entries, page, err := s.listPage(ctx, Filter{RatingMin: &ratingMin, RatingMax: &ratingMax}, OrderRatingDesc, p)
	if err != nil {
		return nil, Pagination{}, err
	}
	if len(entries) == 0 {
		return nil, Pagination{}, ErrNotFound
	}
	return entries, page, nil
}

func (s *Service) ListBySeries(ctx context.Context, name string) ([]Entry, error) {
	return s.listAll(ctx, Filter{Series: name}, OrderSeriesPosition)
}

// ListByAuthor returns every book written by an author whose name contains
// name. Each entry keeps its full author list.
func (s *Service) ListByAuthor(ctx context.Context, name string) ([]Entry, error) {
	ids, err := s.repo.AuthorIDs(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrAuthorNotFound
	}
	rows, err := s.repo.List(ctx, ListQuery{Filter: Filter{AuthorIDs: ids}, Order: OrderTitle})
	if err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

// List pages through the whole catalog by title. An empty page is not an error.
func (s *Service) List(ctx context.Context, p Page) ([]Entry, Pagination, error) {
	return s.listPage(ctx, Filter{}, OrderTitle, p)
}

func (s *Service) SeriesNames(ctx context.Context) ([]string, error) {
	log := logging.Ctx(ctx)

	names, stamp, ok, err := s.cache.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("series cache read failed")
	}
	if ok {
		metrics.SeriesCacheHits.Inc()
		return names, nil
	}
	metrics.SeriesCacheMisses.Inc()

	names, err = s.repo.SeriesNames(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	if err := s.cache.Set(ctx, names, stamp); err != nil {
		log.Warn().Err(err).Msg("series cache write failed")
	}
	return names, nil
}

// UpdateRatings applies one vote per star (1 adds, -1 removes, other values
// are ignored) and returns the updated entry.
func (s *Service) UpdateRatings(ctx context.Context, isbn int64, votes [5]int) (Entry, error) {
	row, err := s.repo.UpdateRatings(ctx, isbn, DeltaFromVotes(votes), s.weights)
	if err != nil {
		return Entry{}, err
	}
	return toEntry(row), nil
}

// Create stores a new book. Negative star counts are treated as zero.
func (s *Service) Create(ctx context.Context, nb NewBook) (Entry, error) {
	for i, v := range nb.Stars {
		if v < 0 {
			nb.Stars[i] = 0
		}
	}
	nb.Title = strings.TrimSpace(nb.Title)
	nb.SeriesName = strings.TrimSpace(nb.SeriesName)
	nb.Authors = normalizeAuthors(nb.Authors)

	row, err := s.repo.Create(ctx, nb, s.weights.Average(nb.Stars))
	if err != nil {
		return Entry{}, err
	}
	s.invalidateSeries(ctx)
	return toEntry(row), nil
}

func (s *Service) Delete(ctx context.Context, isbn int64) (Entry, error) {
	row, err := s.repo.Delete(ctx, isbn)
	if err != nil {
		return Entry{}, err
	}
	s.invalidateSeries(ctx)
	return toEntry(row), nil
}

func (s *Service) invalidateSeries(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("series cache invalidation failed")
	}
}

// normalizeAuthors trims names and drops blanks and exact duplicates.
func normalizeAuthors(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
