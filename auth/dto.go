package auth

// RegisterRequest is the registration request payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the login request payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued session token back to the client.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// ResendConfirmationRequest is the payload for requesting a fresh
// confirmation token by email.
type ResendConfirmationRequest struct {
	Email string `json:"email"`
}

// MessageResponse is a generic success message body.
type MessageResponse struct {
	Message string `json:"message"`
}
