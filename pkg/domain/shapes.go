package domain

import "github.com/hackspark/hackspark/pkg/schema"

// Shapes for every payload the backend returns, compiled once.
var (
	AuthenticatedUserShape = schema.Of[AuthenticatedUser]()
	UserDetailsShape       = schema.Of[UserDetails]()
	TechnologyShape        = schema.Of[Technology]()
	ProjectSummaryShape    = schema.Of[ProjectSummary]()
)

func validateValue(v any) error {
	return schema.Validate(v)
}
