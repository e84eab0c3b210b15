// internal/auth/input.go

// Package auth covers account registration, credential login, and
// Redis-backed sessions.
package auth

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate checks the registration payload. All rules run so the caller
// gets every field error at once.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 100)),
	)
}

// LoginInput is the credential login payload. Identifier accepts either the
// email address or the username.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate checks the login payload.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Identifier, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}
