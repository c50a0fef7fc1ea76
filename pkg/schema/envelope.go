package schema

import (
	"encoding/json"
	"errors"
)

// Envelope is the wrapper every backend response uses: either
// {success: true, message, data} or {success: false, message}.
type Envelope[T any] struct {
	Success bool
	Message string
	Data    T
}

// EnvelopeShape validates an Envelope whose data is described by a payload shape.
type EnvelopeShape[T any] struct {
	data Shape[T]
}

// EnvelopeOf wraps a payload shape in the success/failure envelope.
func EnvelopeOf[T any](data Shape[T]) EnvelopeShape[T] {
	return EnvelopeShape[T]{data: data}
}

// Parse accepts exactly one of the two envelope forms. A success envelope
// without data, or with data that fails the payload shape, is rejected; a
// failure envelope carries no data and any data key is ignored.
func (s EnvelopeShape[T]) Parse(raw []byte) (Envelope[T], error) {
	var env Envelope[T]
	if !json.Valid(raw) {
		return env, &ValidationError{Fields: []FieldError{{Reason: "malformed JSON"}}}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return env, &ValidationError{Fields: []FieldError{{Reason: "expected object"}}}
	}

	verr := &ValidationError{}
	var success, successOK bool
	if v, ok := obj["success"]; !ok || isNull(v) {
		verr.add("success", "required")
	} else if err := json.Unmarshal(v, &success); err != nil {
		verr.add("success", "expected boolean")
	} else {
		successOK = true
	}
	var message string
	if v, ok := obj["message"]; !ok || isNull(v) {
		verr.add("message", "required")
	} else if err := json.Unmarshal(v, &message); err != nil {
		verr.add("message", "expected string")
	}

	var payload T
	if successOK && success {
		data, ok := obj["data"]
		if !ok || isNull(data) {
			verr.add("data", "required")
		} else if p, err := s.data.Parse(data); err != nil {
			var perr *ValidationError
			if !errors.As(err, &perr) {
				return Envelope[T]{}, err
			}
			verr.Fields = append(verr.Fields, perr.nest("data").Fields...)
		} else {
			payload = p
		}
	}
	if !verr.empty() {
		return Envelope[T]{}, verr
	}

	env.Success = success
	env.Message = message
	env.Data = payload
	return env, nil
}
