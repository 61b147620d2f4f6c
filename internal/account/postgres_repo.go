package account

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

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// observeQuery records query metrics. Domain outcomes such as a missing row
// are not counted as query errors.
func observeQuery(operation string, start time.Time, errp *error) {
	metrics.ObserveQuery(operation, start, errp, ErrNotFound, ErrAlreadyExists, ErrPasswordMismatch)
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const accountColumns = `id, email, username, first_name, last_name, phone, role, password_hash, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.FirstName, &a.LastName, &a.Phone,
		&a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepo) Create(ctx context.Context, a *Account) (err error) {
	defer observeQuery("account.create", time.Now(), &err)

	const query = `
	INSERT INTO accounts (email, username, first_name, last_name, phone, role, password_hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = r.db.QueryRow(ctx, query, a.Email, a.Username, a.FirstName, a.LastName, a.Phone, a.Role, a.PasswordHash).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (_ Account, err error) {
	defer observeQuery("account.get_by_email", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (_ Account, err error) {
	defer observeQuery("account.get_by_id", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		// not a uuid
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id, oldHash, newHash string) (err error) {
	defer observeQuery("account.update_password", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET password_hash = $3, updated_at = NOW()
		WHERE id = $1 AND password_hash = $2`, id, oldHash, newHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPasswordMismatch
	}
	return nil
}
