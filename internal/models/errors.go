package models

import "errors"

// Sentinel errors for the domain. Services wrap these with fmt.Errorf
// and %w; handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthenticated   = errors.New("authentication required")
	ErrUnauthorized       = errors.New("not authorized")
	ErrAccessDenied       = errors.New("access denied")
	ErrValidation         = errors.New("validation failed")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrNoQuote            = errors.New("No quote available for this order")
	ErrQuoteLocked        = errors.New("quote can no longer be changed after payment")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is deactivated")
)
