package book

import (
	"fmt"
	"strings"
)

const bookColumns = `
	b.isbn13,
	COALESCE(STRING_AGG(a.author_name, ', ' ORDER BY a.id), '') AS authors,
	b.publication_year,
	b.title,
	MAX(s.series_name) AS series_name,
	MAX(bm.series_position) AS series_position,
	b.rating_avg,
	b.rating_count,
	b.rating_1_star,
	b.rating_2_star,
	b.rating_3_star,
	b.rating_4_star,
	b.rating_5_star,
	b.image_url,
	b.image_small_url`

// bookInfoQuery selects one row per book matching where, authors aggregated.
// Books without a book_map row are still returned.
func bookInfoQuery(where string) string {
	if where == "" {
		where = "1 = 1"
	}
	return fmt.Sprintf(`
SELECT %s
FROM books b
LEFT JOIN book_map bm ON bm.book_isbn = b.isbn13
LEFT JOIN authors a ON a.id = bm.author_id
LEFT JOIN series s ON s.id = bm.series_id
WHERE %s
GROUP BY b.isbn13`, bookColumns, where)
}

func countQuery(where string) string {
	if where == "" {
		where = "1 = 1"
	}
	return "SELECT COUNT(*) FROM books b WHERE " + where
}

func orderClause(o Order) string {
	switch o {
	case OrderYear:
		return "ORDER BY b.publication_year, b.title, b.isbn13"
	case OrderRatingDesc:
		return "ORDER BY b.rating_avg DESC, b.isbn13"
	case OrderSeriesPosition:
		return "ORDER BY MAX(bm.series_position) NULLS LAST, b.title"
	default:
		return "ORDER BY b.title, b.isbn13"
	}
}

// whereClause renders f as a SQL predicate over books b with $n
// placeholders numbered in argument order.
func whereClause(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(format string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if f.ISBN != nil {
		add("b.isbn13 = $%d", *f.ISBN)
	}
	if f.YearMin != nil {
		add("b.publication_year >= $%d", *f.YearMin)
	}
	if f.YearMax != nil {
		add("b.publication_year <= $%d", *f.YearMax)
	}
	if f.Title != "" {
		add(`b.title ILIKE '%%' || $%d || '%%'`, escapeLike(f.Title))
	}
	if f.RatingMin != nil {
		add("b.rating_avg >= $%d", *f.RatingMin)
	}
	if f.RatingMax != nil {
		add("b.rating_avg <= $%d", *f.RatingMax)
	}
	if f.Series != "" {
		add(`b.isbn13 IN (
		SELECT m.book_isbn FROM book_map m JOIN series sr ON sr.id = m.series_id
		WHERE sr.series_name = $%d)`, f.Series)
	}
	if len(f.AuthorIDs) > 0 {
		add("b.isbn13 IN (SELECT m.book_isbn FROM book_map m WHERE m.author_id = ANY($%d::int[]))", f.AuthorIDs)
	}

	if len(clauses) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(clauses, " AND "), args
}

// listSQL builds the data query for q and its arguments.
func listSQL(q ListQuery) (string, []any) {
	where, args := whereClause(q.Filter)
	sql := bookInfoQuery(where) + "\n" + orderClause(q.Order)
	if q.Page != nil {
		args = append(args, q.Page.Limit, q.Page.Offset)
		sql += fmt.Sprintf("\nLIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return sql, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
