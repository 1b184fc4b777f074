package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/user/authproject-go/apperror"
)

// Gate returns the middleware guarding every request that carries a bearer
// token. The check sequence, evaluated fresh on each request:
//
//  1. no Authorization header or non-Bearer scheme: the request proceeds
//     anonymously and route-level policy decides;
//  2. Bearer scheme with a blank token: 400;
//  3. token fails verification (signature, expiry, malformed): 400;
//  4. verified username no longer in the store: 400;
//  5. user logged out: 400;
//  6. user not yet email-confirmed: 400;
//  7. otherwise the caller's identity is placed in the request context.
//
// Because account state is re-read from the store every time, flipping the
// logged-in or enabled flags revokes unexpired tokens immediately.
func Gate(codec *TokenCodec, users UserStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				WriteError(w, r, apperror.NewBadRequestError("token is empty", nil))
				return
			}

			username, roles, err := codec.Verify(tokenString)
			if err != nil {
				WriteError(w, r, apperror.NewBadRequestError("invalid token", err))
				return
			}

			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					WriteError(w, r, apperror.NewBadRequestError("username not found", nil))
					return
				}
				log.Printf("database error looking up user %q at the gate: %v", username, err)
				WriteError(w, r, apperror.NewDatabaseError("failed to get user", err))
				return
			}

			if !user.LoggedIn {
				WriteError(w, r, apperror.NewBadRequestError("user should login first", nil))
				return
			}
			if !user.Enabled {
				WriteError(w, r, apperror.NewBadRequestError("user should confirm email first", nil))
				return
			}

			identity := &Identity{Username: username, Roles: roles}
			next.ServeHTTP(w, r.WithContext(NewContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireIdentity rejects requests that reached a protected route without an
// identity in the context, i.e. anonymous requests the gate let through.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			WriteError(w, r, apperror.NewAuthError("authorization required", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
