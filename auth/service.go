package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/authproject-go/apperror"
	"github.com/user/authproject-go/mailer"
)

const (
	// confirmTokenLifetime bounds how long an emailed confirmation link works.
	confirmTokenLifetime = 5 * time.Minute
	// mailDispatchTimeout bounds how long a request waits on the SMTP relay.
	mailDispatchTimeout = 10 * time.Second

	confirmMailSubject = "Email confirmation"
)

// AuthService implements the registration and authentication flows on top of
// the account and confirmation token stores.
type AuthService struct {
	users           UserStore
	confirmTokens   ConfirmationTokenStore
	codec           *TokenCodec
	sender          mailer.Sender
	confirmLinkBase string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, confirmTokens ConfirmationTokenStore, codec *TokenCodec, sender mailer.Sender, confirmLinkBase string) *AuthService {
	return &AuthService{
		users:           users,
		confirmTokens:   confirmTokens,
		codec:           codec,
		sender:          sender,
		confirmLinkBase: confirmLinkBase,
	}
}

// Register creates a new account, emails a confirmation link and returns a
// session token for the still-unconfirmed user.
//
// The account is created disabled but already marked logged-in; the gate's
// enabled check keeps it away from protected endpoints until the email is
// confirmed.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	// Both uniqueness violations are reported together in one message.
	var taken []string
	usernameTaken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check username", err)
	}
	if usernameTaken {
		taken = append(taken, "This username has already taken")
	}
	emailTaken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check email", err)
	}
	if emailTaken {
		taken = append(taken, "This email has already taken")
	}
	if len(taken) > 0 {
		return nil, apperror.NewConflictError(strings.Join(taken, ". ")+".", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Email:          strings.ToLower(req.Email),
		Username:       req.Username,
		HashedPassword: string(hashedPassword),
		Enabled:        false,
		LoggedIn:       true,
		FirstTime:      StatusFirstTime,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		// A concurrent registration can slip past the pre-check; the unique
		// constraints are the final arbiter.
		switch {
		case errors.Is(err, ErrDuplicateUsername):
			return nil, apperror.NewConflictError("This username has already taken.", nil)
		case errors.Is(err, ErrDuplicateEmail):
			return nil, apperror.NewConflictError("This email has already taken.", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	if err := s.issueConfirmation(ctx, created); err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Issue(created.Username, []string{RoleUser})
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue session token", err)
	}
	return &TokenResponse{AccessToken: accessToken}, nil
}

// Login verifies credentials and account state, marks the user logged in and
// returns a fresh session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Unknown username and wrong password get the same answer.
			return nil, apperror.NewBadRequestError("invalid username or password", nil)
		}
		log.Printf("database error looking up user %q during login: %v", req.Username, err)
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewBadRequestError("invalid username or password", nil)
	}

	if !user.Enabled {
		return nil, apperror.NewBadRequestError("user account is disabled and should confirm email first", nil)
	}

	if err := s.users.SetLoggedIn(ctx, user.Username, true); err != nil {
		return nil, apperror.NewDatabaseError("failed to mark user logged in", err)
	}

	accessToken, err := s.codec.Issue(user.Username, []string{RoleUser})
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue session token", err)
	}
	return &TokenResponse{AccessToken: accessToken}, nil
}

// ConfirmEmail consumes a confirmation token and enables the owning account.
//
// A still-unexpired token that was already confirmed is accepted again; the
// confirmation timestamp is simply overwritten.
func (s *AuthService) ConfirmEmail(ctx context.Context, tokenString string) error {
	token, err := s.confirmTokens.GetByToken(ctx, tokenString)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NewBadRequestError("invalid confirmation token", nil)
		}
		return apperror.NewDatabaseError("failed to look up confirmation token", err)
	}

	if time.Now().After(token.ExpiresAt) {
		return apperror.NewBadRequestError("confirmation token expired", nil)
	}

	if err := s.confirmTokens.MarkConfirmed(ctx, token.ID, time.Now()); err != nil {
		return apperror.NewDatabaseError("failed to mark token confirmed", err)
	}
	if err := s.users.SetEnabled(ctx, token.UserID, true); err != nil {
		return apperror.NewDatabaseError("failed to enable user", err)
	}
	return nil
}

// ResendConfirmation invalidates every previous confirmation token for the
// account behind the given email and issues a fresh one. After a resend at
// most one token per user is live.
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NewNotFoundError(fmt.Sprintf("user with email '%s' not found", email), nil)
		}
		return apperror.NewDatabaseError("failed to get user by email", err)
	}

	if err := s.confirmTokens.DeleteAllForUser(ctx, user.ID); err != nil {
		return apperror.NewDatabaseError("failed to remove previous confirmation tokens", err)
	}

	return s.issueConfirmation(ctx, user)
}

// issueConfirmation creates and persists a confirmation token for the user
// and emails the confirmation link. Mail dispatch is bounded by
// mailDispatchTimeout so registration cannot block indefinitely on SMTP.
func (s *AuthService) issueConfirmation(ctx context.Context, user *User) error {
	token := &ConfirmationToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(confirmTokenLifetime),
	}
	if err := s.confirmTokens.Save(ctx, token); err != nil {
		return apperror.NewDatabaseError("failed to save confirmation token", err)
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailDispatchTimeout)
	defer cancel()

	link := s.confirmLinkBase + token.Token
	if err := s.sender.Send(mailCtx, user.Email, confirmMailSubject, link); err != nil {
		log.Printf("failed to send confirmation email to %s: %v", user.Email, err)
		return apperror.NewBadRequestError("failed to send confirmation email", err)
	}
	return nil
}
