package service

import "errors"

// The three failure signals the transport layer distinguishes. Services wrap
// them with detail via fmt.Errorf("%w: ...", ...); handlers match with
// errors.Is and map to 404, 403, and 400 respectively.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)
