// Package auth implements user registration, email confirmation, login and
// the request-time access gate. It owns the account records, the confirmation
// token records and the session token codec.
package auth

import "time"

// UserStatus marks whether an account has visited the home page yet.
type UserStatus string

const (
	// StatusFirstTime is the status assigned at registration.
	StatusFirstTime UserStatus = "FIRST_TIME"
	// StatusNotFirstTime is set after the first authenticated home page visit.
	StatusNotFirstTime UserStatus = "NOT_FIRST_TIME"
)

// User represents an account record.
//
// Enabled tracks email confirmation and gates login. LoggedIn is toggled by
// login/logout; together with token validity it forms the access gate, so
// flipping it off revokes otherwise-valid tokens without a blacklist.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	HashedPassword string     `json:"-"`
	Enabled        bool       `json:"enabled"`
	LoggedIn       bool       `json:"logged_in"`
	FirstTime      UserStatus `json:"first_time"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ConfirmationToken is a single-use credential proving control of a
// registered email address. It expires five minutes after creation;
// ConfirmedAt is set when the token is consumed.
type ConfirmationToken struct {
	ID          int64
	Token       string
	UserID      int64
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ConfirmedAt *time.Time
}
