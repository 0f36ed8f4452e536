package model

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// usernamePattern keeps usernames disjoint from email addresses.
var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]{2,31}$`)

func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Empty passes so a PATCH can clear the username.
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || usernamePattern.MatchString(v)
		})
	})
	return validate
}

// FormatValidationError converts validator errors to ErrorDetail, reporting the first failing field.
func FormatValidationError(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		e := validationErrors[0]
		return Invalid("Field validation for '" + e.Field() + "' failed on the '" + e.Tag() + "' tag")
	}

	return Invalid(err.Error())
}
