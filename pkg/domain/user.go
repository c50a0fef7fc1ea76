package domain

import "strings"

// AuthenticatedUser is the identity the backend issues at login. SessionID is
// the bearer credential for every authenticated call.
type AuthenticatedUser struct {
	ID        string `json:"id"`
	Email     string `json:"email" validate:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	SessionID string `json:"sessionId"`
}

// UserDetails is the profile returned by GET /users/me.
// The backend sometimes omits the collections or sends null; both decode
// to empty slices.
type UserDetails struct {
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	Technologies []Technology     `json:"technologies,omitempty" validate:"dive"`
	Projects     []ProjectSummary `json:"projects,omitempty" validate:"dive"`
}

// Initials returns the upper-cased first letters of first and last name.
func (d UserDetails) Initials() string {
	var b strings.Builder
	for _, s := range []string{d.FirstName, d.LastName} {
		for _, r := range s {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}
