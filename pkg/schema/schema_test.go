package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type testItem struct {
	ID    string `json:"id"`
	Count int    `json:"count" validate:"gte=0"`
}

type testLevel string

type testDoc struct {
	Name  string     `json:"name"`
	Level testLevel  `json:"level" validate:"oneof=low high"`
	Years *float64   `json:"years,omitempty" validate:"omitempty,gte=0"`
	Items []testItem `json:"items,omitempty" validate:"dive"`
	Tags  []string   `json:"tags,omitempty"`
}

var testDocShape = Of[testDoc]()

func fieldPaths(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	paths := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		paths[i] = f.Path
	}
	return paths
}

func TestParseValid(t *testing.T) {
	raw := `{"name":"a","level":"low","years":2.5,"items":[{"id":"x","count":3}],"extra":{"ignored":true}}`
	doc, err := testDocShape.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Name != "a" || doc.Level != "low" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Years == nil || *doc.Years != 2.5 {
		t.Errorf("Years = %v, want 2.5", doc.Years)
	}
	if len(doc.Items) != 1 || doc.Items[0].Count != 3 {
		t.Errorf("Items = %+v", doc.Items)
	}
}

func TestParseMissingRequired(t *testing.T) {
	_, err := testDocShape.Parse([]byte(`{"items":[{"count":1}]}`))
	if err == nil {
		t.Fatal("expected error for missing required fields")
	}
	got := fieldPaths(t, err)
	want := []string{"name", "level", "items[0].id"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestParseOptionalAbsentNullAndEmptyAreEqual(t *testing.T) {
	inputs := []string{
		`{"name":"a","level":"high"}`,
		`{"name":"a","level":"high","items":null,"tags":null,"years":null}`,
		`{"name":"a","level":"high","items":[],"tags":[]}`,
	}
	var first testDoc
	for i, raw := range inputs {
		doc, err := testDocShape.Parse([]byte(raw))
		if err != nil {
			t.Fatalf("Parse(%s) error: %v", raw, err)
		}
		if doc.Items == nil || doc.Tags == nil {
			t.Errorf("Parse(%s): optional lists should be empty, not nil", raw)
		}
		if i == 0 {
			first = doc
			continue
		}
		if !reflect.DeepEqual(doc, first) {
			t.Errorf("Parse(%s) = %+v, want %+v", raw, doc, first)
		}
	}
}

func TestParseRequiredNull(t *testing.T) {
	_, err := testDocShape.Parse([]byte(`{"name":null,"level":"low"}`))
	if err == nil {
		t.Fatal("expected error for null required field")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	if verr.Fields[0].Path != "name" || verr.Fields[0].Reason != "must not be null" {
		t.Errorf("Fields[0] = %+v", verr.Fields[0])
	}
}

func TestParseClosedEnum(t *testing.T) {
	_, err := testDocShape.Parse([]byte(`{"name":"a","level":"medium"}`))
	if err == nil {
		t.Fatal("expected error for value outside closed set")
	}
	if got := err.Error(); !strings.Contains(got, "level: must be one of [low high]") {
		t.Errorf("error = %q", got)
	}
}

func TestParseNestedConstraint(t *testing.T) {
	raw := `{"name":"a","level":"low","items":[{"id":"x","count":1},{"id":"y","count":-2}]}`
	_, err := testDocShape.Parse([]byte(raw))
	if err == nil {
		t.Fatal("expected error for negative count")
	}
	got := fieldPaths(t, err)
	if len(got) != 1 || got[0] != "items[1].count" {
		t.Errorf("paths = %v, want [items[1].count]", got)
	}
}

func TestParseWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"top level array", `[1,2]`},
		{"top level null", `null`},
		{"items not array", `{"name":"a","level":"low","items":{}}`},
		{"item not object", `{"name":"a","level":"low","items":[1]}`},
		{"number for string", `{"name":5,"level":"low"}`},
		{"malformed", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := testDocShape.Parse([]byte(tt.raw)); err == nil {
				t.Errorf("Parse(%s) expected error", tt.raw)
			}
		})
	}
}

func TestValidateSlice(t *testing.T) {
	err := Validate([]testItem{{ID: "a", Count: 1}, {ID: "b", Count: -1}})
	if err == nil {
		t.Fatal("expected error")
	}
	got := fieldPaths(t, err)
	if len(got) != 1 || got[0] != "[1].count" {
		t.Errorf("paths = %v, want [[1].count]", got)
	}
	if err := Validate([]testItem{{ID: "a"}}); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestEnvelopeSuccess(t *testing.T) {
	shape := EnvelopeOf(testDocShape)
	env, err := shape.Parse([]byte(`{"success":true,"message":"ok","data":{"name":"a","level":"low"}}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !env.Success || env.Message != "ok" || env.Data.Name != "a" {
		t.Errorf("env = %+v", env)
	}
}

func TestEnvelopeFailureIgnoresData(t *testing.T) {
	shape := EnvelopeOf(testDocShape)
	env, err := shape.Parse([]byte(`{"success":false,"message":"nope","data":{"bogus":1}}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if env.Success || env.Message != "nope" {
		t.Errorf("env = %+v", env)
	}
}

func TestEnvelopeRejectsMixedShapes(t *testing.T) {
	shape := EnvelopeOf(testDocShape)
	tests := []struct {
		name     string
		raw      string
		wantPath string
	}{
		{"success without data", `{"success":true,"message":"ok"}`, "data"},
		{"success with null data", `{"success":true,"message":"ok","data":null}`, "data"},
		{"missing success", `{"message":"ok","data":{}}`, "success"},
		{"string success", `{"success":"true","message":"ok"}`, "success"},
		{"missing message", `{"success":false}`, "message"},
		{"bad payload", `{"success":true,"message":"ok","data":{"name":"a"}}`, "data.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shape.Parse([]byte(tt.raw))
			if err == nil {
				t.Fatalf("Parse(%s) expected error", tt.raw)
			}
			got := fieldPaths(t, err)
			if got[0] != tt.wantPath {
				t.Errorf("paths = %v, want first %q", got, tt.wantPath)
			}
		})
	}
}

func TestParseReportsEveryTypeMismatch(t *testing.T) {
	_, err := testDocShape.Parse([]byte(`{"name":1,"level":2,"tags":["a",3]}`))
	got := fieldPaths(t, err)
	want := []string{"name", "level", "tags[1]"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
	var verr *ValidationError
	errors.As(err, &verr)
	if verr.Fields[0].Reason != "expected string, got number" {
		t.Errorf("Fields[0].Reason = %q", verr.Fields[0].Reason)
	}
}

func TestParseMergesPresenceAndConstraintErrors(t *testing.T) {
	raw := `{"level":"low","years":-1,"items":[{"id":"x","count":-3},{"count":1}]}`
	_, err := testDocShape.Parse([]byte(raw))
	got := fieldPaths(t, err)
	want := []string{"name", "items[1].id", "years", "items[0].count"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestParseConstraintSkippedUnderTypeError(t *testing.T) {
	// level has the wrong type; its enum failure must not be reported twice.
	_, err := testDocShape.Parse([]byte(`{"name":"a","level":true,"items":{"id":"x"}}`))
	got := fieldPaths(t, err)
	want := []string{"level", "items"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestParseIntegerFields(t *testing.T) {
	tests := []struct {
		name    string
		count   string
		wantErr bool
	}{
		{"integer", "3", false},
		{"negative integer", "-3", true}, // gte=0
		{"fraction", "1.5", true},
		{"exponent", "1e2", true},
		{"string", `"3"`, true},
		{"null element", "null", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"name":"a","level":"low","items":[{"id":"x","count":` + tt.count + `}]}`
			_, err := testDocShape.Parse([]byte(raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%s) error = %v, wantErr %v", raw, err, tt.wantErr)
			}
		})
	}
}

func TestEnvelopeReportsHeaderAndPayloadErrors(t *testing.T) {
	shape := EnvelopeOf(testDocShape)
	_, err := shape.Parse([]byte(`{"success":true,"message":7,"data":{"name":2,"level":"low"}}`))
	got := fieldPaths(t, err)
	want := []string{"message", "data.name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}
