package domain

import "time"

// ProjectSummary is a project as listed on a user's profile.
type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LikeCount   int    `json:"like_count" validate:"gte=0"`
	StarCount   int    `json:"star_count" validate:"gte=0"`
	AddedAt     string `json:"added_at"`
}

// Added parses AddedAt as RFC 3339. The backend does not guarantee the
// format, so callers fall back to the raw string when ok is false.
func (p ProjectSummary) Added() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339, p.AddedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
