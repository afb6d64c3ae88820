package dto

// LoginRequest accepts both form-encoded (OAuth2 password flow) and JSON bodies.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ResetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type ResetPasswordResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
