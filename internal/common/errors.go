package common

import "errors"

// Business errors raised by services and repositories. Handlers are the only
// place these are translated to HTTP status codes.
var (
	// ErrUnauthorized covers every authentication failure: missing token,
	// bad signature, expired token, or a subject that no longer resolves to
	// a live user. Callers must not be able to tell these apart.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrForbidden means the caller is authenticated but lacks the role or
	// tenant required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalid is rejected client input: bad email, short password,
	// unknown role, oversized prompt.
	ErrInvalid = errors.New("invalid input")

	// ErrConflict is a uniqueness violation (duplicate email, tenant name).
	ErrConflict = errors.New("already exists")

	// ErrNotFound is a missing tenant or resource.
	ErrNotFound = errors.New("not found")

	// ErrUpstream is an LLM provider failure. Surfaced as 502, not 500.
	ErrUpstream = errors.New("llm provider error")
)
