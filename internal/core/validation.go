package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// passwordSpecialChars is the set a strong password must draw at least one character from.
const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

const (
	msgInvalidEmail = "Please enter a valid email address."
	msgWeakPassword = "Password must be at least 8 characters and include a capital letter, a number and a special character."
	msgInvalidPhone = "Please enter a valid phone number."
)

// IsStrongPassword checks length >= 8 plus a special character, a digit and a capital letter.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var special, digit, upper bool
	for _, r := range password {
		switch {
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return special && digit && upper
}

// InputValidator validates request structs and normalizes phone numbers.
type InputValidator struct {
	validate      *validator.Validate
	defaultRegion string
}

// NewInputValidator builds a validator with the strongpassword and phone tags registered.
// Numbers without a country prefix are parsed against defaultRegion.
func NewInputValidator(defaultRegion string) *InputValidator {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	iv := &InputValidator{
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		defaultRegion: strings.ToUpper(defaultRegion),
	}
	iv.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = iv.validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	// Blank passes; presence is the job of "required".
	_ = iv.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		if strings.TrimSpace(fl.Field().String()) == "" {
			return true
		}
		_, err := iv.NormalizePhone(fl.Field().String())
		return err == nil
	})
	return iv
}

// Struct validates s and returns a *ValidationError for the first failing field.
func (iv *InputValidator) Struct(s interface{}) error {
	err := iv.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := fieldErrs[0]
	return newValidationError(fe.Field(), fieldMessage(fe))
}

// NormalizePhone parses raw and returns it in E.164 form.
func (iv *InputValidator) NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", newValidationError("phoneNumber", msgInvalidPhone)
	}
	num, err := phonenumbers.Parse(raw, iv.defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", newValidationError("phoneNumber", msgInvalidPhone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return msgInvalidEmail
	case "strongpassword":
		return msgWeakPassword
	case "phone":
		return msgInvalidPhone
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}
