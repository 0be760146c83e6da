package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "storerating/internal/errors"
)

// SpecialCharacters is the set a password must draw at least one character from.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// messages maps "field.tag" to the text reported for that failing rule.
var messages = map[string]string{
	"email.email":             "Invalid email address",
	"password.min":            "Password must be at least 8 characters",
	"password.max":            "Password must be at most 16 characters",
	"password.uppercase_char": "Password must contain at least one uppercase letter",
	"password.special_char":   "Password must contain at least one special character",
	"name.min":                "Name must be at least 20 characters",
	"name.max":                "Name must be at most 60 characters",
	"address.max":             "Address must be at most 400 characters",
	"role.oneof":              "Invalid role",
	"rating.min":              "Rating must be between 1 and 5",
	"rating.max":              "Rating must be between 1 and 5",
}

// Validator wraps go-playground/validator for Echo and reports only the
// first failing rule.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the password rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "uppercase_char", func(fl validator.FieldLevel) bool {
		return HasUppercase(fl.Field().String())
	})
	mustRegister(v, "special_char", func(fl validator.FieldLevel) bool {
		return HasSpecial(fl.Field().String())
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate implements echo.Validator interface.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("Invalid input")
	}
	return apperrors.NewValidationError(message(fieldErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// HasUppercase reports whether s contains an uppercase letter.
func HasUppercase(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// HasSpecial reports whether s contains a character from SpecialCharacters.
func HasSpecial(s string) bool {
	return strings.ContainsAny(s, SpecialCharacters)
}

// StrongPassword applies the registration password rule: 8-16 characters,
// one uppercase letter and one special character.
func StrongPassword(s string) bool {
	n := len([]rune(s))
	return n >= 8 && n <= 16 && HasUppercase(s) && HasSpecial(s)
}
