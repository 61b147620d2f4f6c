package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/metrics"
)

const pgUniqueViolation = "23505"

// dbtx is satisfied by both the pool and a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// observeQuery records query metrics. Domain outcomes such as a missing row
// are not counted as query errors.
func observeQuery(operation string, start time.Time, errp *error) {
	metrics.ObserveQuery(operation, start, errp, ErrNotFound, ErrAuthorNotFound, ErrDuplicateISBN, ErrNegativeTally)
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanRow(row pgx.Row) (Row, error) {
	var b Row
	err := row.Scan(
		&b.ISBN13, &b.Authors, &b.PublicationYear, &b.Title,
		&b.SeriesName, &b.SeriesPosition,
		&b.RatingAvg, &b.RatingCount,
		&b.Stars[0], &b.Stars[1], &b.Stars[2], &b.Stars[3], &b.Stars[4],
		&b.ImageURL, &b.ImageSmallURL,
	)
	return b, err
}

func getByISBN(ctx context.Context, q dbtx, isbn int64) (Row, error) {
	b, err := scanRow(q.QueryRow(ctx, bookInfoQuery("b.isbn13 = $1"), isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Row{}, ErrNotFound
		}
		return Row{}, fmt.Errorf("get book %d: %w", isbn, err)
	}
	return b, nil
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn int64) (_ Row, err error) {
	defer observeQuery("book.get_by_isbn", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return getByISBN(ctx, r.db, isbn)
}

func (r *PostgresRepo) List(ctx context.Context, q ListQuery) (_ []Row, err error) {
	defer observeQuery("book.list", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sql, args := listSQL(q)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		b, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context, f Filter) (_ int, err error) {
	defer observeQuery("book.count", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args := whereClause(f)
	var total int
	if err := r.db.QueryRow(ctx, countQuery(where), args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

func (r *PostgresRepo) AuthorIDs(ctx context.Context, name string) (_ []int, err error) {
	defer observeQuery("book.author_ids", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT id FROM authors WHERE author_name ILIKE '%' || $1 || '%' ORDER BY id`,
		escapeLike(name))
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepo) SeriesNames(ctx context.Context) (_ []string, err error) {
	defer observeQuery("book.series_names", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT series_name FROM series ORDER BY series_name`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return names, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (r *PostgresRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *PostgresRepo) UpdateRatings(ctx context.Context, isbn int64, delta Tally, w Weights) (out Row, err error) {
	defer observeQuery("book.update_ratings", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = r.inTx(ctx, func(tx pgx.Tx) error {
		var cur Tally
		err := tx.QueryRow(ctx, `
			SELECT rating_1_star, rating_2_star, rating_3_star, rating_4_star, rating_5_star
			FROM books WHERE isbn13 = $1 FOR UPDATE`, isbn,
		).Scan(&cur[0], &cur[1], &cur[2], &cur[3], &cur[4])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock book %d: %w", isbn, err)
		}

		next, err := cur.Apply(delta)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE books SET
				rating_1_star = $2, rating_2_star = $3, rating_3_star = $4,
				rating_4_star = $5, rating_5_star = $6,
				rating_count = $7, rating_avg = $8
			WHERE isbn13 = $1`,
			isbn, next[0], next[1], next[2], next[3], next[4], next.Count(), w.Average(next))
		if err != nil {
			return fmt.Errorf("update ratings %d: %w", isbn, err)
		}

		out, err = getByISBN(ctx, tx, isbn)
		return err
	})
	return out, err
}

func (r *PostgresRepo) Create(ctx context.Context, nb NewBook, avg float64) (out Row, err error) {
	defer observeQuery("book.create", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = r.inTx(ctx, func(tx pgx.Tx) error {
		authorIDs := make([]int, 0, len(nb.Authors))
		for _, name := range nb.Authors {
			var id int
			err := tx.QueryRow(ctx, `
				INSERT INTO authors (author_name) VALUES ($1)
				ON CONFLICT (author_name) DO UPDATE SET author_name = EXCLUDED.author_name
				RETURNING id`, name).Scan(&id)
			if err != nil {
				return fmt.Errorf("upsert author %q: %w", name, err)
			}
			authorIDs = append(authorIDs, id)
		}

		var seriesID *int
		if nb.SeriesName != "" && nb.SeriesPosition != nil {
			var id int
			err := tx.QueryRow(ctx, `
				INSERT INTO series (series_name) VALUES ($1)
				ON CONFLICT (series_name) DO UPDATE SET series_name = EXCLUDED.series_name
				RETURNING id`, nb.SeriesName).Scan(&id)
			if err != nil {
				return fmt.Errorf("upsert series %q: %w", nb.SeriesName, err)
			}
			seriesID = &id
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO books (
				isbn13, publication_year, title, rating_avg, rating_count,
				rating_1_star, rating_2_star, rating_3_star, rating_4_star, rating_5_star,
				image_url, image_small_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			nb.ISBN13, nb.PublicationYear, nb.Title, avg, nb.Stars.Count(),
			nb.Stars[0], nb.Stars[1], nb.Stars[2], nb.Stars[3], nb.Stars[4],
			nb.ImageURL, nb.SmallURL)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return ErrDuplicateISBN
			}
			return fmt.Errorf("insert book %d: %w", nb.ISBN13, err)
		}

		var position *int
		if seriesID != nil {
			position = nb.SeriesPosition
		}
		for _, authorID := range authorIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO book_map (book_isbn, author_id, series_id, series_position)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (book_isbn, author_id) DO NOTHING`,
				nb.ISBN13, authorID, seriesID, position)
			if err != nil {
				return fmt.Errorf("map author %d to book %d: %w", authorID, nb.ISBN13, err)
			}
		}

		out, err = getByISBN(ctx, tx, nb.ISBN13)
		return err
	})
	return out, err
}

func (r *PostgresRepo) Delete(ctx context.Context, isbn int64) (out Row, err error) {
	defer observeQuery("book.delete", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = r.inTx(ctx, func(tx pgx.Tx) error {
		out, err = getByISBN(ctx, tx, isbn)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM books WHERE isbn13 = $1`, isbn)
		if err != nil {
			return fmt.Errorf("delete book %d: %w", isbn, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return out, err
}
