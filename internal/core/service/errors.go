package service

import "errors"

// ErrDuplicateRequest is returned when an idempotency key has already
// been claimed by an earlier submission of the same request.
var ErrDuplicateRequest = errors.New("duplicate request")
