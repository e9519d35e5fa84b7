package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"bevents/internal/domain"
)

// MinPasswordLength is the shortest password accepted at sign up.
const MinPasswordLength = 6

const (
	msgFillAllFields    = "Please fill in all fields"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordTooShort = "Password must be at least 6 characters"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SignInForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type SignUpForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

// Validate returns a *domain.ValidationError for the first failed check:
// empty fields, then mismatched confirmation, then password length.
func (f SignInForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(validate.Struct(f))
}

func (f SignUpForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(validate.Struct(f))
}

var checkOrder = []struct {
	tag     string
	message string
}{
	{"required", msgFillAllFields},
	{"eqfield", msgPasswordMismatch},
	{"min", msgPasswordTooShort},
}

func check(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, c := range checkOrder {
		for _, fe := range fieldErrs {
			if fe.Tag() == c.tag {
				return &domain.ValidationError{Field: fe.Field(), Message: c.message}
			}
		}
	}
	return &domain.ValidationError{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Error()}
}
