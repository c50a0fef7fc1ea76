// Package schema validates untrusted JSON against shape descriptors.
//
// A Shape is compiled once from a Go struct type. The struct's json tags
// declare which keys must be present (plain tag) and which may be absent or
// null (",omitempty"). Value constraints such as closed enums and lower
// bounds are declared with go-playground/validator "validate" tags. Keys the
// shape does not declare are ignored so the backend can add fields freely.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type nodeKind int

const (
	kindScalar nodeKind = iota
	kindObject
	kindList
)

// jsonType is the JSON token a scalar node accepts.
type jsonType int

const (
	typeAny jsonType = iota
	typeString
	typeNumber
	typeInteger
	typeUnsigned
	typeBool
	typeObject
)

func (t jsonType) String() string {
	switch t {
	case typeString:
		return "string"
	case typeNumber:
		return "number"
	case typeInteger:
		return "integer"
	case typeUnsigned:
		return "non-negative integer"
	case typeBool:
		return "boolean"
	case typeObject:
		return "object"
	}
	return "any"
}

type field struct {
	key      string
	index    int
	optional bool
	node     *node
}

// node is the compiled presence tree for one JSON value.
type node struct {
	kind   nodeKind
	json   jsonType // scalars only
	fields []field
	elem   *node
}

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// Shape is a compiled descriptor for values of type T.
// The zero Shape is not usable; build one with Of.
type Shape[T any] struct {
	root *node
}

// Of compiles the shape of T. It is meant to run once, at package
// initialization, and reused for every payload. T must not be recursive.
func Of[T any]() Shape[T] {
	return Shape[T]{root: compile(reflect.TypeFor[T]())}
}

func compile(t reflect.Type) *node {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return &node{kind: kindScalar, json: typeAny}
	}

	switch t.Kind() {
	case reflect.Struct:
		n := &node{kind: kindObject}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			key, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if key == "-" && opts == "" {
				continue
			}
			if key == "" {
				key = sf.Name
			}
			child := compile(sf.Type)
			if hasOption(opts, "string") {
				child = &node{kind: kindScalar, json: typeString}
			}
			n.fields = append(n.fields, field{
				key:      key,
				index:    i,
				optional: hasOption(opts, "omitempty") || hasOption(opts, "omitzero"),
				node:     child,
			})
		}
		return n
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return &node{kind: kindScalar, json: typeString}
		}
		return &node{kind: kindList, elem: compile(t.Elem())}
	case reflect.Map:
		return &node{kind: kindScalar, json: typeObject}
	case reflect.String:
		return &node{kind: kindScalar, json: typeString}
	case reflect.Bool:
		return &node{kind: kindScalar, json: typeBool}
	case reflect.Float32, reflect.Float64:
		return &node{kind: kindScalar, json: typeNumber}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &node{kind: kindScalar, json: typeInteger}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &node{kind: kindScalar, json: typeUnsigned}
	default:
		return &node{kind: kindScalar, json: typeAny}
	}
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

// Parse validates raw against the shape and returns the typed value.
// On any mismatch it returns the zero T and a *ValidationError listing
// every failing field; it never panics on bad input.
//
// Presence and JSON type are checked first, over the whole document.
// Value constraints are then checked on the decoded value; failures under a
// path already reported are left out.
func (s Shape[T]) Parse(raw []byte) (T, error) {
	var zero T
	if !json.Valid(raw) {
		return zero, &ValidationError{Fields: []FieldError{{Reason: "malformed JSON"}}}
	}

	verr := &ValidationError{}
	s.root.check(raw, "", verr)
	reported := verr.paths()

	var out T
	if err := json.Unmarshal(raw, &out); err != nil && verr.empty() {
		return zero, &ValidationError{Fields: []FieldError{decodeError(err)}}
	}
	fillOptional(reflect.ValueOf(&out).Elem(), s.root)

	if err := Validate(out); err != nil {
		var cerr *ValidationError
		if !errors.As(err, &cerr) {
			return zero, err
		}
		for _, f := range cerr.Fields {
			if !covered(reported, f.Path) {
				verr.Fields = append(verr.Fields, f)
			}
		}
	}
	if !verr.empty() {
		return zero, verr
	}
	return out, nil
}

// covered reports whether path is one of reported or lies beneath one.
func covered(reported []string, path string) bool {
	for _, p := range reported {
		if p == "" || p == path ||
			strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

// Validate checks only the value constraints of an already typed value.
// It is used for outbound request bodies.
func (s Shape[T]) Validate(v T) error {
	return Validate(v)
}

func (n *node) check(raw json.RawMessage, path string, verr *ValidationError) {
	switch n.kind {
	case kindObject:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			verr.add(path, "expected object")
			return
		}
		for _, f := range n.fields {
			child := joinPath(path, f.key)
			v, ok := obj[f.key]
			switch {
			case !ok:
				if !f.optional {
					verr.add(child, "required")
				}
			case isNull(v):
				if !f.optional {
					verr.add(child, "must not be null")
				}
			default:
				f.node.check(v, child, verr)
			}
		}
	case kindList:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || items == nil {
			verr.add(path, "expected array")
			return
		}
		for i, item := range items {
			n.elem.check(item, fmt.Sprintf("%s[%d]", path, i), verr)
		}
	case kindScalar:
		if got, ok := n.json.accepts(raw); !ok {
			verr.add(path, "expected "+n.json.String()+", got "+got)
		}
	}
}

// accepts reports whether raw is a token of type t. Otherwise it also
// returns the kind of token found.
func (t jsonType) accepts(raw json.RawMessage) (string, bool) {
	tok := bytes.TrimSpace(raw)
	got := tokenKind(tok)
	switch t {
	case typeAny:
		return got, true
	case typeString:
		return got, got == "string"
	case typeBool:
		return got, got == "boolean"
	case typeObject:
		return got, got == "object"
	case typeNumber:
		return got, got == "number"
	case typeInteger, typeUnsigned:
		if got != "number" {
			return got, false
		}
		if bytes.ContainsAny(tok, ".eE") {
			return "fractional number", false
		}
		if t == typeUnsigned && tok[0] == '-' {
			return "negative number", false
		}
		return got, true
	}
	return got, true
}

func tokenKind(tok []byte) string {
	if len(tok) == 0 {
		return "nothing"
	}
	switch tok[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	return "number"
}

// fillOptional replaces absent optional lists with empty ones so an omitted
// collection and an explicit [] decode to the same value.
func fillOptional(v reflect.Value, n *node) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	switch n.kind {
	case kindObject:
		if v.Kind() != reflect.Struct {
			return
		}
		for _, f := range n.fields {
			fv := v.Field(f.index)
			if f.optional && f.node.kind == kindList && fv.Kind() == reflect.Slice && fv.IsNil() {
				fv.Set(reflect.MakeSlice(fv.Type(), 0, 0))
				continue
			}
			fillOptional(fv, f.node)
		}
	case kindList:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return
		}
		for i := 0; i < v.Len(); i++ {
			fillOptional(v.Index(i), n.elem)
		}
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeError(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return FieldError{
			Path:   typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return FieldError{Reason: err.Error()}
}
