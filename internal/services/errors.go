package services

import "errors"

// Sentinel errors returned by the services layer. Handlers translate these
// into HTTP status codes; anything not listed here is treated as an internal
// error.
var (
	// ErrInvalidCredentials is returned for every local-login failure mode:
	// unknown email, OAuth-only account, or password mismatch. Collapsing
	// them into one error keeps login responses from leaking which emails
	// are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registration hits an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail is returned when a registration email is malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when a registration password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrEmptySecret is returned when a submitted secret is empty or
	// whitespace-only.
	ErrEmptySecret = errors.New("secret cannot be empty")

	// ErrSecretNotFound is returned when a secret does not exist or is not
	// owned by the caller. The two cases are deliberately indistinguishable.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSessionNotFound is returned when a session token is unknown or the
	// session's window has passed.
	ErrSessionNotFound = errors.New("session not found")

	// ErrProfileIncomplete is returned when Google's user info response is
	// missing the email, which the account model requires.
	ErrProfileIncomplete = errors.New("google profile has no email")

	// ErrInvalidState is returned when an OAuth callback carries a missing,
	// malformed, expired, or mismatched state token.
	ErrInvalidState = errors.New("invalid oauth state")
)
