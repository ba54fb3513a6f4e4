// Package auth provides token-based authentication services.
package auth

import "errors"

// Authentication errors
var (
	// ErrInvalidToken is returned when a token fails signature or claims
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrShortSecret is returned when the configured signing secret is too
	// short to be safe.
	ErrShortSecret = errors.New("jwt secret must be at least 32 characters")
)
