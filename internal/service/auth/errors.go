package auth

import "errors"

var (
	// ErrInvalidToken indicates a malformed token or bad signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a token past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidCredentials indicates an unknown email or wrong password.
	// Deliberately indistinct to avoid leaking which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrShortSecret indicates a signing secret below the minimum length.
	ErrShortSecret = errors.New("jwt secret must be at least 32 bytes")
)
