package auth

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by the stores. Services translate these into
// apperror values at the flow boundary.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername indicates the username unique constraint fired.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail indicates the email unique constraint fired.
	ErrDuplicateEmail = errors.New("email already taken")
)

// UserStore persists account records. The unique constraints on username and
// email are the serialization point for concurrent registrations: Create
// must surface constraint violations as ErrDuplicateUsername or
// ErrDuplicateEmail.
type UserStore interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetLoggedIn(ctx context.Context, username string, loggedIn bool) error
	SetEnabled(ctx context.Context, userID int64, enabled bool) error
	SetFirstTime(ctx context.Context, username string, status UserStatus) error
}

// ConfirmationTokenStore persists email confirmation tokens.
type ConfirmationTokenStore interface {
	Save(ctx context.Context, token *ConfirmationToken) error
	GetByToken(ctx context.Context, token string) (*ConfirmationToken, error)
	MarkConfirmed(ctx context.Context, tokenID int64, at time.Time) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}
