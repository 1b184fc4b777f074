package users

// HomeResponse is the home page payload.
type HomeResponse struct {
	Username   string `json:"username"`
	UserStatus string `json:"userStatus"`
}

// MessageResponse is a generic success message body.
type MessageResponse struct {
	Message string `json:"message"`
}
