package record

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
)

var errInvalidForm = errors.New("invalid form")

// check validates v's struct tags and folds extra cross-record failures into one
// core.ValidationError.
func check(v interface{}, extra ...core.FieldError) error {
	var fields []core.FieldError
	if err := core.Validate.Struct(v); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Wrap(err, "validating form")
		}
		for _, fe := range vErrs {
			fields = append(fields, core.FieldError{Field: fe.Field(), Error: fe.Translate(core.Translator)})
		}
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return core.NewValidationError(errInvalidForm, fields...)
}

// NormalizeAll applies a per-entity normalization to every object of a raw JSON array.
func NormalizeAll[T any](v interface{}, normalize func(Raw, int) T) []T {
	objs := Objects(v)
	out := make([]T, 0, len(objs))
	for i, obj := range objs {
		out = append(out, normalize(obj, i))
	}
	return out
}
