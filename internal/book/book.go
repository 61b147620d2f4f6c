package book

import (
	"errors"
)

var (
	// ErrNotFound is returned when no book matches the lookup.
	ErrNotFound       = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrDuplicateISBN  = errors.New("duplicate isbn")
	// ErrNegativeTally is returned when a rating delta would drop a star tally below zero.
	ErrNegativeTally = errors.New("rating tally cannot be negative")
)

// Row is one book as read from the catalog tables, with its authors joined
// into a single comma separated string.
type Row struct {
	ISBN13          int64
	Authors         string
	PublicationYear int
	Title           string
	SeriesName      *string
	SeriesPosition  *int
	RatingAvg       float64
	RatingCount     int
	Stars           Tally
	ImageURL        string
	ImageSmallURL   string
}

// Entry is the public representation of a book.
type Entry struct {
	ISBN13      int64       `json:"isbn13"`
	Authors     string      `json:"authors"`
	Publication int         `json:"publication"`
	Title       string      `json:"title"`
	Ratings     Ratings     `json:"ratings"`
	Icons       Icons       `json:"icons"`
	SeriesInfo  *SeriesInfo `json:"series_info,omitempty"`
}

type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Rating1 int     `json:"rating_1"`
	Rating2 int     `json:"rating_2"`
	Rating3 int     `json:"rating_3"`
	Rating4 int     `json:"rating_4"`
	Rating5 int     `json:"rating_5"`
}

type Icons struct {
	Large string `json:"large"`
	Small string `json:"small"`
}

type SeriesInfo struct {
	Name     string `json:"name"`
	Position *int   `json:"position"`
}

// Pagination is the offset paging envelope returned by paged listings.
type Pagination struct {
	TotalRecords int `json:"totalRecords"`
	Limit        int `json:"limit"`
	Offset       int `json:"offset"`
	NextPage     int `json:"nextPage"`
}

// NewBook is the input for creating a catalog entry.
type NewBook struct {
	ISBN13          int64
	PublicationYear int
	Title           string
	Authors         []string
	SeriesName      string
	SeriesPosition  *int
	Stars           Tally
	ImageURL        string
	SmallURL        string
}

// Filter narrows a listing. Zero fields do not constrain.
type Filter struct {
	ISBN      *int64
	YearMin   *int
	YearMax   *int
	Title     string
	RatingMin *float64
	RatingMax *float64
	Series    string
	AuthorIDs []int
}

type Order int

const (
	OrderTitle Order = iota
	OrderYear
	OrderRatingDesc
	OrderSeriesPosition
)

// ListQuery is a filtered, ordered listing. A nil Page returns every match.
type ListQuery struct {
	Filter Filter
	Order  Order
	Page   *Page
}

type Page struct {
	Limit  int
	Offset int
}
