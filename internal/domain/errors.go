package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCode means no credential matched the presented secret.
	// Public callers must never be able to tell this apart from ErrExpiredCode
	// or ErrAlreadyRedeemed; the HTTP adapter collapses all of them.
	ErrInvalidCode = errors.New("invalid code")
	// ErrExpiredCode means a credential matched but its validity window has passed.
	ErrExpiredCode = errors.New("code expired")
	// ErrAlreadyRedeemed means the conditional redemption update affected zero
	// rows: either the credential was consumed earlier or a concurrent request
	// won the race. The two cases are indistinguishable on purpose.
	ErrAlreadyRedeemed = errors.New("code already redeemed")
	// ErrLockedOut signals the attempt guard threshold was exceeded for the
	// caller's key. Validation is refused before any credential lookup.
	ErrLockedOut = errors.New("too many failed attempts")
	// ErrScopeMismatch means the credential is valid but bound to a different
	// community than the redemption context demanded.
	ErrScopeMismatch = errors.New("community scope mismatch")
	// ErrIssuanceCollision is returned when short-code generation exhausted its
	// retry budget without finding a free hash. Reported, never retried forever.
	ErrIssuanceCollision = errors.New("short code generation exhausted retries")
	// ErrAlreadyClosed guards debrief immutability: a closed episode only
	// accepts a superseding debrief, never an in-place rewrite.
	ErrAlreadyClosed = errors.New("episode already closed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
)
