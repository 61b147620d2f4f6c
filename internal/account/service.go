package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookcatalog/internal/platform/crypto"
)

type Service struct {
	repo     Repository
	secret   string
	tokenTTL time.Duration
}

func NewService(repo Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

func (s *Service) Register(ctx context.Context, reg Registration) (Account, error) {
	hash, err := crypto.HashPassword(reg.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	a := &Account{
		Email:        strings.ToLower(strings.TrimSpace(reg.Email)),
		Username:     strings.TrimSpace(reg.Username),
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Phone:        strings.TrimSpace(reg.Phone),
		Role:         RoleUser,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return *a, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}
	if err := crypto.VerifyPassword(a.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, err
	}

	token, _, err := crypto.GenerateToken(s.secret, a.ID, a.Role, s.tokenTTL)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: token, ID: a.ID, Role: a.Role}, nil
}

// ChangePassword replaces the password of the account registered under email.
// The caller must own that account and know its current password.
func (s *Service) ChangePassword(ctx context.Context, callerID, email, oldPassword, newPassword string) error {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if a.ID != callerID {
		return ErrForbidden
	}
	if err := crypto.VerifyPassword(a.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return ErrPasswordMismatch
		}
		return err
	}

	newHash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, a.ID, a.PasswordHash, newHash)
}

// TokenRole returns the current role of the token subject. A token whose
// account was removed yields ErrNotFound.
func (s *Service) TokenRole(ctx context.Context, accountID string) (string, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return a.Role, nil
}

// TokenMessage is the greeting returned by the token test route.
func TokenMessage(role string) string {
	return "Your token is valid and your role is: " + role
}
