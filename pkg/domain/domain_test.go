package domain

import (
	"math"
	"reflect"
	"testing"
)

func TestValidSessionID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"sess_abcdefghijklmnopqrstuvwxyz", true},
		{"sess_0123456789abcdefghijklmnop", true},
		{"sess_ABCDEFGHIJKLMNOPQRSTUVWXYZ", false},
		{"sess_abc", false},
		{"sess_abcdefghijklmnopqrstuvwxyz0", false},
		{"tok_abcdefghijklmnopqrstuvwxyz", false},
		{" sess_abcdefghijklmnopqrstuvwxyz", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidSessionID(tt.id); got != tt.want {
			t.Errorf("ValidSessionID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestValidSkillLevel(t *testing.T) {
	for _, l := range SkillLevels {
		if !ValidSkillLevel(l) {
			t.Errorf("ValidSkillLevel(%q) = false", l)
		}
	}
	for _, l := range []SkillLevel{"", "master", "Beginner"} {
		if ValidSkillLevel(l) {
			t.Errorf("ValidSkillLevel(%q) = true", l)
		}
	}
}

func TestUserDetailsOmittedAndEmptyCollectionsMatch(t *testing.T) {
	omitted := `{"firstName":"Ada","lastName":"L","username":"ada","email":"a@x.io"}`
	empty := `{"firstName":"Ada","lastName":"L","username":"ada","email":"a@x.io","technologies":[],"projects":[]}`

	a, err := UserDetailsShape.Parse([]byte(omitted))
	if err != nil {
		t.Fatalf("Parse(omitted) error: %v", err)
	}
	b, err := UserDetailsShape.Parse([]byte(empty))
	if err != nil {
		t.Fatalf("Parse(empty) error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("omitted = %+v, empty = %+v", a, b)
	}
	if len(a.Technologies) != 0 || a.Projects == nil {
		t.Errorf("collections = %v / %v, want empty non-nil", a.Technologies, a.Projects)
	}
}

func TestUserDetailsRejectsBadSkillLevel(t *testing.T) {
	raw := `{"firstName":"Ada","lastName":"L","username":"ada","email":"a@x.io",
		"technologies":[{"name":"Go","slug":"go","skill_level":"guru"}]}`
	if _, err := UserDetailsShape.Parse([]byte(raw)); err == nil {
		t.Error("expected error for skill_level outside the closed set")
	}
}

func TestUserDetailsRejectsNegativeCounts(t *testing.T) {
	raw := `{"firstName":"Ada","lastName":"L","username":"ada","email":"a@x.io",
		"projects":[{"id":"p1","name":"P","description":"d","like_count":-1,"star_count":0,"added_at":"2024-01-01"}]}`
	if _, err := UserDetailsShape.Parse([]byte(raw)); err == nil {
		t.Error("expected error for negative like_count")
	}
}

func TestAuthenticatedUserShape(t *testing.T) {
	raw := `{"id":"u1","email":"a@x.io","firstName":"A","lastName":"B","username":"ab","sessionId":"sess_abcdefghijklmnopqrstuvwxyz"}`
	u, err := AuthenticatedUserShape.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if u.SessionID != "sess_abcdefghijklmnopqrstuvwxyz" {
		t.Errorf("SessionID = %q", u.SessionID)
	}

	if _, err := AuthenticatedUserShape.Parse([]byte(`{"id":"u1","email":"not-an-email","firstName":"A","lastName":"B","username":"ab","sessionId":"s"}`)); err == nil {
		t.Error("expected error for malformed email")
	}
}

func TestTechnologyYearsOptional(t *testing.T) {
	tech, err := TechnologyShape.Parse([]byte(`{"name":"Go","slug":"go","skill_level":"expert"}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if tech.YearsExperience != nil {
		t.Errorf("YearsExperience = %v, want nil", *tech.YearsExperience)
	}
	if _, err := TechnologyShape.Parse([]byte(`{"name":"Go","slug":"go","skill_level":"expert","years_experience":-1}`)); err == nil {
		t.Error("expected error for negative years_experience")
	}
}

func TestAddTechnologyRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     AddTechnologyRequest
		wantErr bool
	}{
		{"valid", AddTechnologyRequest{TagSlug: "go", SkillLevel: SkillExpert, YearsExperience: 3}, false},
		{"zero years", AddTechnologyRequest{TagSlug: "go", SkillLevel: SkillBeginner}, false},
		{"missing slug", AddTechnologyRequest{SkillLevel: SkillBeginner}, true},
		{"bad level", AddTechnologyRequest{TagSlug: "go", SkillLevel: "guru"}, true},
		{"negative years", AddTechnologyRequest{TagSlug: "go", SkillLevel: SkillExpert, YearsExperience: -1}, true},
		{"infinite years", AddTechnologyRequest{TagSlug: "go", SkillLevel: SkillExpert, YearsExperience: math.Inf(1)}, true},
		{"NaN years", AddTechnologyRequest{TagSlug: "go", SkillLevel: SkillExpert, YearsExperience: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	if err := (LoginRequest{Email: "a@x.io", Password: "hunter22"}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (LoginRequest{Email: "nope", Password: "x"}).Validate(); err == nil {
		t.Error("expected error for bad email")
	}
	if err := (LoginRequest{Email: "a@x.io"}).Validate(); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestProjectAdded(t *testing.T) {
	p := ProjectSummary{AddedAt: "2024-03-01T10:00:00Z"}
	if got, ok := p.Added(); !ok || got.Year() != 2024 {
		t.Errorf("Added() = %v, %v", got, ok)
	}
	if _, ok := (ProjectSummary{AddedAt: "last week"}).Added(); ok {
		t.Error("Added() ok for non RFC 3339 value")
	}
}

func TestInitials(t *testing.T) {
	d := UserDetails{FirstName: "ada", LastName: "lovelace"}
	if got := d.Initials(); got != "AL" {
		t.Errorf("Initials() = %q, want %q", got, "AL")
	}
	if got := (UserDetails{}).Initials(); got != "" {
		t.Errorf("Initials() = %q, want empty", got)
	}
}
