package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// FieldErrors flattens validation failures into a {field: message} map.
// It returns nil when err carries no field level information.
func FieldErrors(err error) map[string]string {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(Translator)
		}
		return fldErrs
	case *ValidationError:
		if len(origErr.Fields) == 0 {
			return nil
		}
		fldErrs := make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			if _, ok := fldErrs[fErr.Field]; !ok {
				fldErrs[fErr.Field] = fErr.Error
			}
		}
		return fldErrs
	}
	return nil
}

// IsValidationError reports whether err is a form validation failure.
func IsValidationError(err error) bool {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *ValidationError:
		return true
	}
	return false
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
