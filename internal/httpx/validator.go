package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookcatalog/internal/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && validation.ValidateISBN(fl.Field().String())
	})
	_ = v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		return validation.ValidatePostYear(int(fl.Field().Int()))
	})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return validation.IsValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validation.IsValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("email_addr", func(fl validator.FieldLevel) bool {
		return validation.IsValidEmail(fl.Field().String())
	})
	return v
}

// ValidateStruct runs struct tag validation and returns one detail per failing
// field, or nil.
func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Tag:     fe.Tag(),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email", "email_addr":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "isbn":
		return fmt.Sprintf("%s must be a 13 or 10 digit ISBN without a leading zero", field)
	case "pubyear":
		return fmt.Sprintf("%s must be between %d and %d", field, validation.YearMin, validation.YearMax)
	case "password_strength":
		return fmt.Sprintf("%s must be at least 8 characters with uppercase, lowercase, number, and special character", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
