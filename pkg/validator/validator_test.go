package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signupForm struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Text     string `validate:"max=5"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(signupForm{Email: "nope", Password: "abc", Text: "too long"})
	msg := FormatValidationError(err)

	assert.Contains(t, msg, "Username is required")
	assert.Contains(t, msg, "E-mail must be a valid email address")
	assert.Contains(t, msg, "Password must be at least 6 characters")
	assert.Contains(t, msg, "Message must be at most 5 characters")
}

func TestFormatValidationErrorPlain(t *testing.T) {
	assert.Equal(t, "boom", FormatValidationError(errors.New("boom")))
}
