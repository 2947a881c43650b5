package models

import (
	"sync"

	validator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	userValidator     *validator.Validate
	userValidatorOnce sync.Once
)

// Validator returns the shared validator used at the transport boundary.
// It knows the "notblank" tag in addition to the built-in ones.
func Validator() *validator.Validate {
	userValidatorOnce.Do(func() {
		validate := validator.New(validator.WithRequiredStructEnabled())
		// RegisterValidation only fails on an empty tag or a nil func.
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		userValidator = validate
	})

	return userValidator
}

// ValidateUser checks the client-controlled fields of usr. The ID is not
// inspected: it is ignored on every write path.
func ValidateUser(usr User) error {
	return Validator().Struct(usr)
}
