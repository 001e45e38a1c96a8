// Package v1 provides account business logic for API version 1: credential
// verification, per-request identity resolution, the authorization gate, and
// per-user settings.
//
// Error Handling:
// This package defines sentinel errors for the failures callers must tell
// apart. They are wrapped with context using fmt.Errorf("%w") and matched
// with errors.Is in handlers.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrDemoForbidden):
//	    c.JSON(http.StatusForbidden, domain.Notice{Level: "warning", Message: "..."})
//	case errors.Is(err, logicv1.ErrValidationFailed):
//	    c.JSON(http.StatusBadRequest, domain.Notice{Level: "danger", Message: err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for account operations.
var (
	// ErrInvalidCredentials indicates a wrong username or password. Unknown
	// users and wrong passwords are reported identically.
	// HTTP Status: 401 Unauthorized (sign-in), 400 Bad Request (password change)
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrValidationFailed indicates input rejected before any store write.
	// HTTP Status: 400 Bad Request
	ErrValidationFailed = errors.New("validation failed")

	// ErrPasswordTooShort wraps ErrValidationFailed.
	ErrPasswordTooShort = &validationError{msg: "password must be at least 10 characters long"}

	// ErrPasswordMismatch wraps ErrValidationFailed.
	ErrPasswordMismatch = &validationError{msg: "password and confirmation do not match"}

	// ErrUnauthenticated indicates no identity could be resolved.
	// HTTP Status: 302 Found (redirect to sign-in)
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrDemoForbidden indicates the demo identity attempted a write.
	// HTTP Status: 403 Forbidden
	ErrDemoForbidden = errors.New("not permitted for the demo user")

	// ErrStaleSession indicates a session references a user that no longer
	// exists. It is handled like ErrUnauthenticated.
	ErrStaleSession = errors.New("session references unknown user")

	// ErrStoreUnavailable indicates the backing store failed.
	// HTTP Status: 500 Internal Server Error
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUserNotFound indicates the username does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the username is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrDemoDisabled indicates demo activation while demo mode is off.
	// HTTP Status: 404 Not Found
	ErrDemoDisabled = errors.New("demo mode is disabled")
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidationFailed }
