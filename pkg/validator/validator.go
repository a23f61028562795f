package validator

import (
	"errors"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	apperrors "github.com/atlasclinic/clinic-api/pkg/errors"
)

// Validator validates request structs via `validate` tags and converts
// failures into field-keyed AppErrors.
type Validator struct {
	v *validatorv10.Validate
}

func New() *Validator {
	return &Validator{v: validatorv10.New(validatorv10.WithRequiredStructEnabled())}
}

func (val *Validator) Validate(obj interface{}) error {
	err := val.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.BadRequest("invalid request", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = message(fe)
	}
	return apperrors.Validation(fields)
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
