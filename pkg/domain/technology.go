package domain

// SkillLevel is a self-assessed proficiency with a technology.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillExpert       SkillLevel = "expert"
)

// SkillLevels lists every valid skill level, lowest first.
var SkillLevels = []SkillLevel{SkillBeginner, SkillIntermediate, SkillExpert}

// ValidSkillLevel returns true if l is one of SkillLevels.
func ValidSkillLevel(l SkillLevel) bool {
	for _, s := range SkillLevels {
		if s == l {
			return true
		}
	}
	return false
}

// Technology is one entry of a user's tech profile.
type Technology struct {
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	SkillLevel      SkillLevel `json:"skill_level" validate:"oneof=beginner intermediate expert"`
	YearsExperience *float64   `json:"years_experience,omitempty" validate:"omitempty,gte=0"`
}

// AddTechnologyRequest is the payload for POST /users/me/technologies.
type AddTechnologyRequest struct {
	TagSlug         string     `json:"tag_slug" validate:"required"`
	SkillLevel      SkillLevel `json:"skill_level" validate:"oneof=beginner intermediate expert"`
	YearsExperience float64    `json:"years_experience" validate:"finite,gte=0"`
}

// Validate checks the request before it is sent.
func (r AddTechnologyRequest) Validate() error {
	return validateValue(r)
}
