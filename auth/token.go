package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/authproject-go/config"
)

// Fixed registered claims stamped into every session token. Verify rejects
// tokens that do not carry both.
const (
	tokenSubject = "user details"
	tokenIssuer  = "authproject"
)

// RoleUser is the role granted to every account.
const RoleUser = "USER"

// ErrInvalidToken is returned by Verify for any token that cannot be
// accepted: bad signature, malformed input, wrong subject or issuer, or
// expiry. Callers get no finer detail than this.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens. It is stateless: validity is
// a pure function of the token bytes, the signing secret and the clock.
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenCodec creates a TokenCodec from auth configuration.
func NewTokenCodec(cfg config.AuthConfig) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(cfg.JWTSecret),
		lifetime: cfg.TokenLifetime,
	}
}

// Issue produces a signed session token asserting the given username and
// roles, valid from now until now plus the configured lifetime.
func (c *TokenCodec) Issue(username string, roles []string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenSubject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the username and
// roles it asserts. Any unacceptable token, including garbage input, yields
// ErrInvalidToken; Verify never panics.
func (c *TokenCodec) Verify(tokenString string) (string, []string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", nil, ErrInvalidToken
	}

	// jwt.ParseWithClaims already enforced signature and expiry; the fixed
	// subject and issuer tie the token to this service.
	if claims.Subject != tokenSubject || claims.Issuer != tokenIssuer {
		return "", nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return "", nil, ErrInvalidToken
	}

	return claims.Username, claims.Roles, nil
}
