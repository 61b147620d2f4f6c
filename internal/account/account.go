package account

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrAlreadyExists = errors.New("account already exists")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("password does not match")
	ErrForbidden          = errors.New("account belongs to another user")
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Registration is the input for creating an account. Password is plain text.
type Registration struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Token is returned on a successful login.
type Token struct {
	AccessToken string `json:"accessToken"`
	ID          string `json:"id"`
	Role        string `json:"role"`
}
