package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/authproject-go/apperror"
)

func newTestHandlers(t *testing.T, sender *fakeSender) (*Handlers, *memUserStore, *memTokenStore) {
	t.Helper()
	svc, users, tokens, _ := newTestService(t, sender)
	return NewHandlers(svc), users, tokens
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperror.ErrorResponse {
	t.Helper()
	var body apperror.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleRegister_Created(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"email":"alice@example.com","username":"alice","password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.HandleRegister()(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.AccessToken)
}

func TestHandleRegister_MissingFields(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"email":"alice@example.com"}`))
	rec := httptest.NewRecorder()
	h.HandleRegister()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username, email, and password are required", decodeError(t, rec).Message)
}

func TestHandleRegister_DuplicateIs409(t *testing.T) {
	sender := &fakeSender{}
	h, users, _ := newTestHandlers(t, sender)
	seedUser(t, users, "alice", "alice@example.com", "secret123", true)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"email":"alice@example.com","username":"alice","password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.HandleRegister()(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleLogin_OK(t *testing.T) {
	h, users, _ := newTestHandlers(t, &fakeSender{})
	seedUser(t, users, "alice", "alice@example.com", "secret123", true)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.AccessToken)
}

func TestHandleLogin_BadCredentialsIs400(t *testing.T) {
	h, users, _ := newTestHandlers(t, &fakeSender{})
	seedUser(t, users, "alice", "alice@example.com", "secret123", true)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid username or password", decodeError(t, rec).Message)
}

func TestHandleConfirmEmail_PlainTextSuccess(t *testing.T) {
	h, users, tokens := newTestHandlers(t, &fakeSender{})
	user := seedUser(t, users, "alice", "alice@example.com", "secret123", false)
	require.NoError(t, tokens.Save(context.Background(), &ConfirmationToken{
		Token:     "live-token",
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/register/confirm?confirmToken=live-token", nil)
	rec := httptest.NewRecorder()
	h.HandleConfirmEmail()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email confirmed. Please login.", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHandleConfirmEmail_MissingParam(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeSender{})

	req := httptest.NewRequest(http.MethodGet, "/api/register/confirm", nil)
	rec := httptest.NewRecorder()
	h.HandleConfirmEmail()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResendConfirmation_OK(t *testing.T) {
	sender := &fakeSender{}
	h, users, _ := newTestHandlers(t, sender)
	seedUser(t, users, "alice", "alice@example.com", "secret123", false)

	req := httptest.NewRequest(http.MethodPost, "/api/register/resendConfirmationToken",
		strings.NewReader(`{"email":"alice@example.com"}`))
	rec := httptest.NewRecorder()
	h.HandleResendConfirmation()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Token resent", body.Message)

	_, sent := sender.lastSent()
	assert.True(t, sent)
}

func TestHandleResendConfirmation_UnknownEmailIs404(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeSender{})

	req := httptest.NewRequest(http.MethodPost, "/api/register/resendConfirmationToken",
		strings.NewReader(`{"email":"nobody@example.com"}`))
	rec := httptest.NewRecorder()
	h.HandleResendConfirmation()(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
