package usecase

import (
	"errors"
	"fmt"

	"pdao-registration/internal/schema"
)

// MsgInvalidCredentials is shared by every login failure so the body does not
// reveal whether the account exists.
const MsgInvalidCredentials = "Invalid email or password"

var ErrUserNotFound = errors.New("user not found")

// ValidationError carries one entry per violated rule.
type ValidationError struct {
	Errors schema.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Errors.Error()
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: schema.FieldErrors{{Field: field, Message: message}}}
}

// DuplicateError is a uniqueness conflict on one field.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Field, e.Message)
}

var duplicateMessages = map[string]string{
	"email":          "Email is already registered",
	"contact_number": "Contact number is already registered",
	"user_id":        "Could not allocate a user ID, please try again",
}

func newDuplicateError(field string) *DuplicateError {
	msg, ok := duplicateMessages[field]
	if !ok {
		msg = "Record already exists"
	}
	return &DuplicateError{Field: field, Message: msg}
}

// AuthenticationError is a credential failure. Field only tells the client
// which input to focus.
type AuthenticationError struct {
	Field   string
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed on %s", e.Field)
}

// AuthorizationError is returned when the account state forbids the action.
type AuthorizationError struct {
	Status  int
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}
