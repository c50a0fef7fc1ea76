package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per type.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return sf.Name
		}
		return name
	})
	v.RegisterValidation("finite", func(fl validator.FieldLevel) bool { //nolint:errcheck // static tag
		f := fl.Field()
		switch f.Kind() {
		case reflect.Float32, reflect.Float64:
			x := f.Float()
			return !math.IsInf(x, 0) && !math.IsNaN(x)
		}
		return true
	})
	return v
}

// Validate runs the "validate" tag constraints of v, a struct or a slice of
// structs. Field paths in the returned *ValidationError use JSON key names.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structErrors(validate.Struct(rv.Interface()))
	case reflect.Slice, reflect.Array:
		out := &ValidationError{}
		for i := 0; i < rv.Len(); i++ {
			if err := Validate(rv.Index(i).Interface()); err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					return err
				}
				out.Fields = append(out.Fields, verr.nest(fmt.Sprintf("[%d]", i)).Fields...)
			}
		}
		if out.empty() {
			return nil
		}
		return out
	}
	return nil
}

func structErrors(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []FieldError{{Reason: err.Error()}}}
	}
	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.add(trimRoot(fe.Namespace()), reason(fe))
	}
	return out
}

// trimRoot drops the leading struct type name validator puts in namespaces.
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "min":
		return "must have length >= " + fe.Param()
	case "max":
		return "must have length <= " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "finite":
		return "must be a finite number"
	}
	return "failed " + fe.Tag() + " constraint"
}
