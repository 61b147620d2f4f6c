package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"bookcatalog/internal/httpx"
	"bookcatalog/internal/validation"
)

const (
	MsgMissingISBN       = "Missing 'isbn' query parameter."
	MsgInvalidISBN       = "ISBN not valid. ISBN should be a positive 13 or 10 digit number."
	MsgInvalidYear       = "Year parameter is invalid. A year should be a number between 1600 and 3000. Additionally, the minimum year should be less than or equal to the maximum year."
	MsgMissingTitle      = "Title was not provided."
	MsgMissingRating     = "Missing maximum and minimum rating."
	MsgBadRating         = "Bad maximum and/or minimum rating."
	MsgMissingSeriesName = "name route parameter is missing."
	MsgMissingAuthor     = "Missing 'author' parameter."
	MsgBookNotFound      = "Book not found."
	MsgYearNotFound      = "No books found for the given year range."
	MsgTitleNotFound     = "No books found for that given title."
	MsgRatingNotFound    = "No books found for the given rating range."
	MsgAuthorNotFound    = "Author was not found."
	MsgNoMatch           = "No books found that meet the search criteria. Try again with a different search criteria."
	MsgUpdateMissing     = "You are missing parameters (either isbn or rating). You MUST provide an ISBN and at least 1 rating to update."
	MsgUpdateAllZero     = "You cannot leave all ratings undefined or 0. You must update at least one rating!"
	MsgUpdateNotFound    = "ISBN does not exist - update failed."
	MsgNegativeTally     = "A rating cannot be removed when its count is already 0."
	MsgCreateMissing     = "One of the parameters is missing! Please re-check to see you have all required fields!"
	MsgCreateTitleOrYear = "Title is empty and/or year is not in the range of 1600 - 3000"
	MsgDuplicateISBN     = "Cannot have duplicate ISBNs! Try a different value."
	MsgMalformedBody     = "Request body must be valid JSON."
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// RegisterOpen mounts the public read routes.
func (h *HTTPHandler) RegisterOpen(r chi.Router) {
	r.Get("/book", h.List)
	r.Get("/book/", h.List)
	r.Get("/book/isbn", h.GetByISBN)
	r.Get("/book/year", h.ListByYear)
	r.Get("/book/title", h.ListByTitle)
	r.Get("/book/rating", h.ListByRating)
	r.Get("/book/series", h.SeriesNames)
	r.Get("/book/series/{name}", h.ListBySeries)
	r.Get("/book/authors", h.ListByAuthor)
	r.Get("/book/authors/", h.ListByAuthor)
	r.Get("/book/authors/{author}", h.ListByAuthor)
	r.Get("/book/{author}", h.ListByAuthor)
}

// RegisterClosed mounts the write routes. r must already require a token.
func (h *HTTPHandler) RegisterClosed(r chi.Router) {
	r.Put("/book", h.UpdateRatings)
	r.Put("/book/", h.UpdateRatings)
	r.Post("/book", h.Create)
	r.Post("/book/", h.Create)
	r.Delete("/book/isbn", h.Delete)
}

// isbnParam reads and validates the isbn query parameter, answering 400 on failure.
func isbnParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw, present := r.URL.Query()["isbn"]
	if !present || len(raw) == 0 {
		httpx.BadRequest(w, r, MsgMissingISBN)
		return 0, false
	}
	isbn, ok := validation.ParseISBN(raw[0])
	if !ok {
		httpx.BadRequest(w, r, MsgInvalidISBN)
		return 0, false
	}
	return isbn, true
}

func pageParam(r *http.Request) Page {
	q := r.URL.Query()
	p := validation.ResolvePagination(q.Get("limit"), q.Get("offset"))
	return Page{Limit: p.Limit, Offset: p.Offset}
}

// GetByISBN handles GET /book/isbn?isbn=
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn, ok := isbnParam(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetByISBN(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, MsgBookNotFound)
			return
		}
		httpx.ServerError(w, r, "book.get_by_isbn", err)
		return
	}
	httpx.JSONOK(w, map[string]any{"entry": entry})
}

// ListByYear handles GET /book/year?year_min=&year_max=
func (h *HTTPHandler) ListByYear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	yearMin, errMin := strconv.Atoi(strings.TrimSpace(q.Get("year_min")))
	yearMax, errMax := strconv.Atoi(strings.TrimSpace(q.Get("year_max")))
	if errMin != nil || errMax != nil || !validation.ValidateYear(yearMin, yearMax) {
		httpx.BadRequest(w, r, MsgInvalidYear)
		return
	}

	entries, err := h.service.ListByYear(r.Context(), yearMin, yearMax)
	h.writeEntries(w, r, "book.list_by_year", entries, err, MsgYearNotFound)
}

// ListByTitle handles GET /book/title?title=
func (h *HTTPHandler) ListByTitle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if !validation.ValidateTitle(title) {
		httpx.BadRequest(w, r, MsgMissingTitle)
		return
	}

	entries, err := h.service.ListByTitle(r.Context(), title)
	h.writeEntries(w, r, "book.list_by_title", entries, err, MsgTitleNotFound)
}

// ListByRating handles GET /book/rating. A missing bound defaults to the
// edge of the rating scale, but at least one bound is required.
func (h *HTTPHandler) ListByRating(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	_, hasMin := q["rating_min"]
	_, hasMax := q["rating_max"]
	if !hasMin && !hasMax {
		httpx.BadRequest(w, r, MsgMissingRating)
		return
	}

	ratingMin, ratingMax := float64(validation.RatingMin), float64(validation.RatingMax)
	if hasMin {
		if !validation.IsNumberProvided(q.Get("rating_min")) {
			httpx.BadRequest(w, r, MsgBadRating)
			return
		}
		ratingMin, _ = strconv.ParseFloat(strings.TrimSpace(q.Get("rating_min")), 64)
	}
	if hasMax {
		if !validation.IsNumberProvided(q.Get("rating_max")) {
			httpx.BadRequest(w, r, MsgBadRating)
			return
		}
		ratingMax, _ = strconv.ParseFloat(strings.TrimSpace(q.Get("rating_max")), 64)
	}
	if !validation.ValidateRatings(ratingMin, ratingMax) {
		httpx.BadRequest(w, r, MsgBadRating)
		return
	}

	entries, page, err := h.service.ListByRating(r.Context(), ratingMin, ratingMax, pageParam(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, MsgRatingNotFound)
			return
		}
		httpx.ServerError(w, r, "book.list_by_rating", err)
		return
	}
	httpx.JSONOK(w, map[string]any{"entries": entries, "pagination": page})
}

// SeriesNames handles GET /book/series
func (h *HTTPHandler) SeriesNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.SeriesNames(r.Context())
	if err != nil {
		httpx.ServerError(w, r, "book.series_names", err)
		return
	}
	httpx.JSONOK(w, map[string]any{"series_names": names})
}

// ListBySeries handles GET /book/series/{name}
func (h *HTTPHandler) ListBySeries(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		httpx.BadRequest(w, r, MsgMissingSeriesName)
		return
	}

	entries, err := h.service.ListBySeries(r.Context(), name)
	h.writeEntries(w, r, "book.list_by_series", entries, err, MsgNoMatch)
}

// ListByAuthor handles GET /book/{author} and GET /book/authors/{author}
func (h *HTTPHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	author := strings.TrimSpace(chi.URLParam(r, "author"))
	if author == "" {
		httpx.BadRequest(w, r, MsgMissingAuthor)
		return
	}

	entries, err := h.service.ListByAuthor(r.Context(), author)
	if errors.Is(err, ErrAuthorNotFound) {
		httpx.NotFound(w, r, MsgAuthorNotFound)
		return
	}
	h.writeEntries(w, r, "book.list_by_author", entries, err, MsgAuthorNotFound)
}

// List handles GET /book/
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, page, err := h.service.List(r.Context(), pageParam(r))
	if err != nil {
		httpx.ServerError(w, r, "book.list", err)
		return
	}
	httpx.JSONOK(w, map[string]any{"entries": entries, "pagination": page})
}

func (h *HTTPHandler) writeEntries(w http.ResponseWriter, r *http.Request, op string, entries []Entry, err error, notFound string) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, notFound)
			return
		}
		httpx.ServerError(w, r, op, err)
		return
	}
	httpx.JSONOK(w, map[string]any{"entries": entries})
}

// isbnValue accepts an ISBN sent either as a JSON number or a string.
type isbnValue string

func (v *isbnValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = isbnValue(s)
		return nil
	}
	*v = isbnValue(b)
	return nil
}

type updateRatingsRequest struct {
	ISBN     isbnValue `json:"isbn"`
	NewStar1 *int      `json:"new_star1"`
	NewStar2 *int      `json:"new_star2"`
	NewStar3 *int      `json:"new_star3"`
	NewStar4 *int      `json:"new_star4"`
	NewStar5 *int      `json:"new_star5"`
}

// votes returns the five votes and whether at least one is set and non-zero.
func (req updateRatingsRequest) votes() ([5]int, bool) {
	var out [5]int
	changed := false
	for i, p := range []*int{req.NewStar1, req.NewStar2, req.NewStar3, req.NewStar4, req.NewStar5} {
		if p == nil {
			continue
		}
		out[i] = *p
		if *p != 0 {
			changed = true
		}
	}
	return out, changed
}

// UpdateRatings handles PUT /book/
func (h *HTTPHandler) UpdateRatings(w http.ResponseWriter, r *http.Request) {
	var req updateRatingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, MsgMalformedBody)
		return
	}
	if strings.TrimSpace(string(req.ISBN)) == "" {
		httpx.BadRequest(w, r, MsgUpdateMissing)
		return
	}
	isbn, ok := validation.ParseISBN(string(req.ISBN))
	if !ok {
		httpx.BadRequest(w, r, MsgInvalidISBN)
		return
	}
	votes, changed := req.votes()
	if !changed {
		httpx.BadRequest(w, r, MsgUpdateAllZero)
		return
	}

	entry, err := h.service.UpdateRatings(r.Context(), isbn, votes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.NotFound(w, r, MsgUpdateNotFound)
		case errors.Is(err, ErrNegativeTally):
			httpx.BadRequest(w, r, MsgNegativeTally)
		default:
			httpx.ServerError(w, r, "book.update_ratings", err)
		}
		return
	}
	httpx.JSONOK(w, map[string]any{"entry": entry})
}

type createRequest struct {
	ISBN13          *isbnValue `json:"isbn13" validate:"required,isbn"`
	PublicationYear *int       `json:"publication_year" validate:"required,pubyear"`
	Title           *string    `json:"title" validate:"required"`
	ImageURL        *string    `json:"image_url" validate:"required"`
	SmallURL        *string    `json:"small_url" validate:"required"`
	Authors         []string   `json:"authors"`
	SeriesName      string     `json:"series_name"`
	SeriesPos       *int       `json:"series_pos"`
	Rating1         int        `json:"rating_1"`
	Rating2         int        `json:"rating_2"`
	Rating3         int        `json:"rating_3"`
	Rating4         int        `json:"rating_4"`
	Rating5         int        `json:"rating_5"`
}

// createValidationError reports missing fields first, then a bad ISBN, then a
// bad year.
func createValidationError(w http.ResponseWriter, r *http.Request, details []httpx.ErrorDetail) {
	tags := make(map[string]bool, len(details))
	for _, d := range details {
		tags[d.Tag] = true
	}
	switch {
	case tags["required"]:
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", MsgCreateMissing, details)
	case tags["isbn"]:
		httpx.BadRequest(w, r, MsgInvalidISBN)
	case tags["pubyear"]:
		httpx.BadRequest(w, r, MsgCreateTitleOrYear)
	default:
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", MsgCreateMissing, details)
	}
}

// Create handles POST /book/
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, MsgMalformedBody)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		createValidationError(w, r, details)
		return
	}
	if !validation.ValidateTitle(*req.Title) {
		httpx.BadRequest(w, r, MsgCreateTitleOrYear)
		return
	}
	isbn, _ := validation.ParseISBN(string(*req.ISBN13))

	entry, err := h.service.Create(r.Context(), NewBook{
		ISBN13:          isbn,
		PublicationYear: *req.PublicationYear,
		Title:           *req.Title,
		Authors:         req.Authors,
		SeriesName:      req.SeriesName,
		SeriesPosition:  req.SeriesPos,
		Stars:           Tally{req.Rating1, req.Rating2, req.Rating3, req.Rating4, req.Rating5},
		ImageURL:        *req.ImageURL,
		SmallURL:        *req.SmallURL,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			httpx.BadRequest(w, r, MsgDuplicateISBN)
			return
		}
		httpx.ServerError(w, r, "book.create", err)
		return
	}
	httpx.JSONCreated(w, map[string]any{"entry": entry})
}

// Delete handles DELETE /book/isbn?isbn=
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	isbn, ok := isbnParam(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Delete(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, MsgNoMatch)
			return
		}
		httpx.ServerError(w, r, "book.delete", err)
		return
	}
	httpx.JSONOK(w, map[string]any{"entry": entry})
}
