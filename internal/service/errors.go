package service

import "errors"

// Outcome taxonomy shared by every service operation. Specific failures wrap
// one of these categories, so callers classify with errors.Is and still see
// the detail in the message. Anything that does not match a category is a
// storage fault and surfaces generically.
var (
	// ErrValidation marks malformed or missing input. Never worth retrying.
	ErrValidation = errors.New("invalid input")

	// ErrAuth marks failed authentication: unknown credentials or an invalid
	// token. Distinct from ErrForbidden so clients know to re-authenticate.
	ErrAuth = errors.New("authentication failed")

	// ErrForbidden marks an authenticated caller lacking the required role or
	// ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a lost race or a spent resource: slot already booked,
	// reset token used or expired, duplicate email. The caller may pick a
	// different target; nothing retries automatically.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an absent slot, user, or token.
	ErrNotFound = errors.New("not found")
)
