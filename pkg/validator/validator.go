package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// report json names, not Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimal.Decimal is validated as a float64, so gt=0 / gte=0 work on it
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		switch d := v.Interface().(type) {
		case decimal.Decimal:
			f, _ := d.Float64()
			return f
		case *decimal.Decimal:
			if d == nil {
				return nil
			}
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, &decimal.Decimal{})

	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			errors = append(errors, &ErrorResponse{
				FailedField: err.Field(),
				Tag:         err.Tag(),
				Value:       err.Param(),
			})
		}
	}
	return errors
}

// Fields flattens errs into field -> message.
func Fields(errs []*ErrorResponse) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.FailedField] = message(e)
	}
	return out
}

func message(e *ErrorResponse) string {
	switch e.Tag {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + e.Value
	case "gte":
		return "must be at least " + e.Value
	case "oneof":
		return "must be one of: " + e.Value
	case "email":
		return "must be a valid email"
	case "min":
		return "must have at least " + e.Value + " characters or items"
	case "max":
		return "must have at most " + e.Value + " characters or items"
	case "dive":
		return "has an invalid element"
	}
	return "failed on " + e.Tag
}
