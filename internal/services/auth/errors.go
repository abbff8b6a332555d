package auth

import "errors"

// Service errors. Authenticate and Refresh return exactly one of these so
// the transport layer can map each to a distinct response.
var (
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrRevoked              = errors.New("access token has been invalidated")
	ErrInvalidToken         = errors.New("invalid or expired token")
)
