package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ListByAuthor(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil, DefaultWeights)
	ctx := context.Background()

	t.Run("no matching author", func(t *testing.T) {
		repo.EXPECT().AuthorIDs(gomock.Any(), "nobody").Return(nil, nil)

		_, err := svc.ListByAuthor(ctx, " nobody ")
		assert.ErrorIs(t, err, ErrAuthorNotFound)
	})

	t.Run("filters by author ids", func(t *testing.T) {
		repo.EXPECT().AuthorIDs(gomock.Any(), "king").Return([]int{4, 7}, nil)
		repo.EXPECT().
			List(gomock.Any(), ListQuery{Filter: Filter{AuthorIDs: []int{4, 7}}, Order: OrderTitle}).
			Return([]Row{{ISBN13: 9781501142970, Authors: "Stephen King, Owen King"}}, nil)

		entries, err := svc.ListByAuthor(ctx, "king")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Stephen King, Owen King", entries[0].Authors)
	})
}

func TestService_ListAllEmptyIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil, DefaultWeights)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := svc.ListByTitle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_List_EmptyPageIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil, DefaultWeights)

	page := Page{Limit: 10, Offset: 500}
	repo.EXPECT().List(gomock.Any(), ListQuery{Order: OrderTitle, Page: &page}).Return(nil, nil)
	repo.EXPECT().Count(gomock.Any(), Filter{}).Return(12, nil)

	entries, p, err := svc.List(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
	assert.Equal(t, Pagination{TotalRecords: 12, Limit: 10, Offset: 500, NextPage: 510}, p)
}

func TestService_ListByRating_CountsSameFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil, DefaultWeights)

	rMin, rMax := 3.0, 5.0
	f := Filter{RatingMin: &rMin, RatingMax: &rMax}
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]Row{{ISBN13: 1}}, nil)
	repo.EXPECT().Count(gomock.Any(), f).Return(1, nil)

	entries, p, err := svc.ListByRating(context.Background(), 3, 5, Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, p.TotalRecords)
}

func TestService_SeriesNames_UsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	cache := NewMockSeriesCache(ctrl)
	svc := NewService(repo, cache, DefaultWeights)
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		cache.EXPECT().Get(gomock.Any()).Return([]string{"Dune"}, int64(0), true, nil)

		names, err := svc.SeriesNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune"}, names)
	})

	t.Run("miss fills cache with the stamp it read", func(t *testing.T) {
		cache.EXPECT().Get(gomock.Any()).Return(nil, int64(7), false, nil)
		repo.EXPECT().SeriesNames(gomock.Any()).Return([]string{"Discworld", "Dune"}, nil)
		cache.EXPECT().Set(gomock.Any(), []string{"Discworld", "Dune"}, int64(7)).Return(nil)

		names, err := svc.SeriesNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Discworld", "Dune"}, names)
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		cache.EXPECT().Get(gomock.Any()).Return(nil, int64(0), false, errors.New("connection refused"))
		repo.EXPECT().SeriesNames(gomock.Any()).Return(nil, nil)
		cache.EXPECT().Set(gomock.Any(), []string{}, int64(0)).Return(errors.New("connection refused"))

		names, err := svc.SeriesNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{}, names)
	})
}

func TestService_UpdateRatings_PassesDeltaAndWeights(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	svc := NewService(repo, nil, LegacyWeights)

	repo.EXPECT().
		UpdateRatings(gomock.Any(), int64(9780441172719), Tally{1, 0, 0, -1, 0}, LegacyWeights).
		Return(Row{ISBN13: 9780441172719, RatingCount: 3}, nil)

	e, err := svc.UpdateRatings(context.Background(), 9780441172719, [5]int{1, 2, 0, -1, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Ratings.Count)
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	cache := NewMockSeriesCache(ctrl)
	svc := NewService(repo, cache, DefaultWeights)

	pos := 2
	want := NewBook{
		ISBN13:          9780441013593,
		PublicationYear: 1969,
		Title:           "Dune Messiah",
		Authors:         []string{"Frank Herbert"},
		SeriesName:      "Dune",
		SeriesPosition:  &pos,
		Stars:           Tally{0, 0, 0, 0, 2},
	}
	repo.EXPECT().Create(gomock.Any(), want, 5.0).Return(Row{ISBN13: want.ISBN13, Title: want.Title}, nil)
	cache.EXPECT().Invalidate(gomock.Any()).Return(nil)

	e, err := svc.Create(context.Background(), NewBook{
		ISBN13:          9780441013593,
		PublicationYear: 1969,
		Title:           "  Dune Messiah ",
		Authors:         []string{" Frank Herbert", "", "Frank Herbert"},
		SeriesName:      "Dune ",
		SeriesPosition:  &pos,
		Stars:           Tally{-3, 0, 0, 0, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", e.Title)
}

func TestService_Create_DuplicateDoesNotInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	cache := NewMockSeriesCache(ctrl)
	svc := NewService(repo, cache, DefaultWeights)

	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(Row{}, ErrDuplicateISBN)

	_, err := svc.Create(context.Background(), NewBook{ISBN13: 1234567890})
	assert.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	cache := NewMockSeriesCache(ctrl)
	svc := NewService(repo, cache, DefaultWeights)

	repo.EXPECT().Delete(gomock.Any(), int64(9780441172719)).Return(Row{ISBN13: 9780441172719}, nil)
	cache.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down"))

	e, err := svc.Delete(context.Background(), 9780441172719)
	require.NoError(t, err)
	assert.Equal(t, int64(9780441172719), e.ISBN13)
}
