// Package users covers the account-holder endpoints that sit behind the
// request gate: the home page and logout.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/authproject-go/apperror"
	"github.com/user/authproject-go/auth"
)

// Home page statuses reported to the client.
const (
	statusFirstTime    = "First time"
	statusNotFirstTime = "Not first time"
)

// UserService implements the authenticated account-holder operations.
type UserService struct {
	users auth.UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users auth.UserStore) *UserService {
	return &UserService{users: users}
}

// HomePage reports whether this is the account's first authenticated visit.
// The first visit flips the account to NOT_FIRST_TIME, so "First time" is
// reported exactly once per account.
func (s *UserService) HomePage(ctx context.Context, username string) (*HomeResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			// The gate verified this user moments ago; vanishing here means
			// the account was removed mid-request.
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with username '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if user.FirstTime == auth.StatusFirstTime {
		if err := s.users.SetFirstTime(ctx, username, auth.StatusNotFirstTime); err != nil {
			return nil, apperror.NewDatabaseError("failed to update user status", err)
		}
		return &HomeResponse{Username: user.Username, UserStatus: statusFirstTime}, nil
	}
	return &HomeResponse{Username: user.Username, UserStatus: statusNotFirstTime}, nil
}

// Logout clears the logged-in flag, which revokes the user's outstanding
// session tokens at the gate.
func (s *UserService) Logout(ctx context.Context, username string) (*MessageResponse, error) {
	if err := s.users.SetLoggedIn(ctx, username, false); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with username '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to log user out", err)
	}
	return &MessageResponse{Message: fmt.Sprintf("User %s is logged out", username)}, nil
}
