package domain

import "regexp"

var sessionIDPattern = regexp.MustCompile(`^sess_[a-z0-9]{26}$`)

// ValidSessionID reports whether id has the backend's session credential
// format: "sess_" followed by 26 lowercase alphanumerics.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// Validate checks the credentials before they are sent.
func (r LoginRequest) Validate() error {
	return validateValue(r)
}
