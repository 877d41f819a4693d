package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"store-rating/internal/domain"
)

const passwordSpecials = "!@#$%^&*"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return strings.ContainsFunc(pw, func(r rune) bool { return r >= 'A' && r <= 'Z' }) &&
			strings.ContainsAny(pw, passwordSpecials)
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return v
}

// check validates s and turns the first failure into a domain validation error.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Internal("validate", err)
	}
	return domain.Validation("%s", describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "max", "len":
		return lengthMessage(fe)
	case "password_policy":
		return field + " must contain an uppercase letter and one of " + passwordSpecials
	case "role":
		return field + " must be one of user, owner, admin"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func lengthMessage(fe validator.FieldError) string {
	unit := " characters"
	if k := fe.Kind(); k == reflect.Int || k == reflect.Int64 || k == reflect.Uint {
		unit = ""
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", fe.Field(), fe.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", fe.Field(), fe.Param(), unit)
	}
	return fmt.Sprintf("%s must be exactly %s%s", fe.Field(), fe.Param(), unit)
}
