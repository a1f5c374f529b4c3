package auth

import "errors"

// Error is an authentication failure the user can act on.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code
}

var (
	ErrEmailInUse        = &Error{Code: "email-already-in-use", Message: "An account with this email already exists."}
	ErrInvalidEmail      = &Error{Code: "invalid-email", Message: "Please enter a valid email address."}
	ErrWeakPassword      = &Error{Code: "weak-password", Message: "Password should be at least 8 characters."}
	ErrInvalidCredential = &Error{Code: "invalid-credential", Message: "Incorrect email or password."}
	ErrUserNotFound      = &Error{Code: "user-not-found", Message: "No account found with this email."}
	ErrTooManyRequests   = &Error{Code: "too-many-requests", Message: "Too many attempts. Please try again later."}
	ErrMissingName       = &Error{Code: "missing-display-name", Message: "Please enter your name."}
)

const genericMessage = "Something went wrong. Please try again."

// Message returns the user-readable text for err.
func Message(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	return genericMessage
}

// Code returns the machine-readable code for err, or "" for unknown errors.
func Code(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}

	return ""
}
