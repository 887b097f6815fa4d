// Package validation holds the declarative constraints on user accounts.
// They are checked on registration and again on every profile update, before
// anything reaches persistence.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Profile carries the user fields constraints apply to. Password is the
// plaintext and is only checked when CheckPassword is set.
type Profile struct {
	Name          string `validate:"required"`
	Email         string `validate:"required,email"`
	Password      string `validate:"required_if=CheckPassword true,omitempty,min=7,bcryptmax,nopassword"`
	Age           int    `validate:"gte=0"`
	CheckPassword bool
}

// Error describes the first violated constraint. It maps to HTTP 400.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// bcrypt only accepts up to 72 bytes of input.
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	_ = v.RegisterValidation("nopassword", func(fl validator.FieldLevel) bool {
		return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
	})
	return v
}

// Normalize trims name, email and password and lower-cases the email.
func Normalize(p *Profile) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	p.Password = strings.TrimSpace(p.Password)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate returns *Error for the first failing constraint, nil otherwise.
func Validate(p *Profile) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Message: err.Error()}
	}

	fe := verrs[0]
	return &Error{Field: strings.ToLower(fe.Field()), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "Name.required":
		return "Name is required"
	case "Email.required":
		return "Email is required"
	case "Email.email":
		return "Email is invalid"
	case "Password.required_if":
		return "Password is required"
	case "Password.min":
		return "Password must be at least 7 characters long"
	case "Password.bcryptmax":
		return "Password must be at most 72 bytes long"
	case "Password.nopassword":
		return `Password cannot contain "password"`
	case "Age.gte":
		return "Age must be a positive number"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
