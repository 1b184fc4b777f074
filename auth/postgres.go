package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresUserStore is the pgx-backed UserStore.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

// NewPostgresUserStore creates a PostgresUserStore on the given pool.
func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (email, username, password, enabled, is_logged_in, is_first_time)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query,
		user.Email, user.Username, user.HashedPassword,
		user.Enabled, user.LoggedIn, string(user.FirstTime),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, ErrDuplicateUsername
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, ErrDuplicateEmail
			}
		}
		return nil, err
	}
	return user, nil
}

const userColumns = `id, email, username, password, enabled, is_logged_in, is_first_time, created_at`

func (s *PostgresUserStore) scanUser(row pgx.Row) (*User, error) {
	var user User
	var status string
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.HashedPassword,
		&user.Enabled, &user.LoggedIn, &status, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.FirstTime = UserStatus(status)
	return &user, nil
}

func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, username))
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, strings.ToLower(email)))
}

func (s *PostgresUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, strings.ToLower(email)).Scan(&exists)
	return exists, err
}

func (s *PostgresUserStore) SetLoggedIn(ctx context.Context, username string, loggedIn bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET is_logged_in = $1 WHERE username = $2`, loggedIn, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET enabled = $1 WHERE id = $2`, enabled, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) SetFirstTime(ctx context.Context, username string, status UserStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET is_first_time = $1 WHERE username = $2`, string(status), username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresConfirmationTokenStore is the pgx-backed ConfirmationTokenStore.
type PostgresConfirmationTokenStore struct {
	db *pgxpool.Pool
}

// NewPostgresConfirmationTokenStore creates a PostgresConfirmationTokenStore
// on the given pool.
func NewPostgresConfirmationTokenStore(db *pgxpool.Pool) *PostgresConfirmationTokenStore {
	return &PostgresConfirmationTokenStore{db: db}
}

func (s *PostgresConfirmationTokenStore) Save(ctx context.Context, token *ConfirmationToken) error {
	query := `INSERT INTO confirmation_tokens (token, user_id, created_at, expires_at)
              VALUES ($1, $2, $3, $4)
              RETURNING id`
	return s.db.QueryRow(ctx, query,
		token.Token, token.UserID, token.CreatedAt, token.ExpiresAt,
	).Scan(&token.ID)
}

func (s *PostgresConfirmationTokenStore) GetByToken(ctx context.Context, tokenString string) (*ConfirmationToken, error) {
	query := `SELECT id, token, user_id, created_at, expires_at, confirmed_at
              FROM confirmation_tokens WHERE token = $1`
	var token ConfirmationToken
	err := s.db.QueryRow(ctx, query, tokenString).Scan(
		&token.ID, &token.Token, &token.UserID,
		&token.CreatedAt, &token.ExpiresAt, &token.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (s *PostgresConfirmationTokenStore) MarkConfirmed(ctx context.Context, tokenID int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE confirmation_tokens SET confirmed_at = $1 WHERE id = $2`, at, tokenID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresConfirmationTokenStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM confirmation_tokens WHERE user_id = $1`, userID)
	return err
}
