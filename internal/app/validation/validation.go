package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
)

// New returns a validator that reports fields by their json (or form) name.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return f.Name
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Struct validates s and converts the first failure into an
// InvalidArgument error naming the field.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return customErrors.NewInvalidArgument(err.Error())
	}

	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return customErrors.NewMissingField(fe.Field())
	case "max":
		return fieldError(fe.Field(), fe.Field()+" must be at most "+fe.Param()+" characters")
	case "min":
		return fieldError(fe.Field(), fe.Field()+" must be at least "+fe.Param()+" characters")
	case "gte":
		return fieldError(fe.Field(), fe.Field()+" must be greater than or equal to "+fe.Param())
	case "lte":
		return fieldError(fe.Field(), fe.Field()+" must be less than or equal to "+fe.Param())
	default:
		return fieldError(fe.Field(), fe.Field()+" is invalid")
	}
}

func fieldError(field, msg string) error {
	return &customErrors.Error{Kind: customErrors.ErrInvalidArgument, Field: field, Message: msg}
}
