package schema

import "strings"

// FieldError describes one mismatch between a payload and its shape.
// Path uses dotted keys and [i] indices, e.g. "data.projects[2].like_count".
type FieldError struct {
	Path   string
	Reason string
}

func (f FieldError) String() string {
	if f.Path == "" {
		return f.Reason
	}
	return f.Path + ": " + f.Reason
}

// ValidationError enumerates every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid shape: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(path, reason string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Reason: reason})
}

func (e *ValidationError) paths() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Path
	}
	return out
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// nest returns a copy of e with every path placed under prefix.
func (e *ValidationError) nest(prefix string) *ValidationError {
	out := &ValidationError{Fields: make([]FieldError, len(e.Fields))}
	for i, f := range e.Fields {
		out.Fields[i] = FieldError{Path: joinPath(prefix, f.Path), Reason: f.Reason}
	}
	return out
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	case strings.HasPrefix(path, "["):
		return prefix + path
	default:
		return prefix + "." + path
	}
}
