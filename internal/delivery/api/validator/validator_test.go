package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}

func TestRequestValidator(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&loginRequest{Email: "a@example.com"}))
	assert.NoError(t, v.Validate(&loginRequest{Email: "a@example.com", Role: "admin"}))

	err := v.Validate(&loginRequest{Email: "nope", Role: "owner"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "role", fields["role"])
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}
