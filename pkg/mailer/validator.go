package mailer

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// AddressValidator checks email syntax with the validator "email" rule.
type AddressValidator struct {
	validate *validator.Validate
}

// NewAddressValidator builds a validator; a nil validate gets a fresh instance.
func NewAddressValidator(validate *validator.Validate) *AddressValidator {
	if validate == nil {
		validate = validator.New()
	}
	return &AddressValidator{validate: validate}
}

// IsValid reports whether address is a syntactically valid email.
func (v *AddressValidator) IsValid(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	return v.validate.Var(address, "required,email") == nil
}
