package account

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=account

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	// UpdatePassword swaps the hash only if it still equals oldHash.
	UpdatePassword(ctx context.Context, id, oldHash, newHash string) error
}
