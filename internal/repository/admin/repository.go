package admin

import "context"

// User is an authenticated back-office account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}

// Repository looks up back-office accounts for credential checks.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}
