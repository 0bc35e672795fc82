package model

// Wire types for the three backend contracts. Field names follow the
// deployed Qlink API exactly (note the mixed access_token/userId
// casing in LoginResponse).

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"userId"`
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents the created account. No session payload
// is consumed from this response; registration does not imply login.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ShortenRequest represents a URL shortening request
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl"`
}

// ShortenResponse represents a successful shortening response
type ShortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// ErrorResponse represents a standardized error body. Message, when
// present, is shown to the user verbatim.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
