package auth

import (
	"fmt"

	"message-relay/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CredentialsForm is the register/login payload as received from the
// boundary. The core places no strength requirement on passwords; the
// boundary only rejects empty fields.
type CredentialsForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

func ValidateCredentials(form CredentialsForm) error {
	if err := validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return nil
}
