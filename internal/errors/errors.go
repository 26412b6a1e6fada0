package errors

import "errors"

// Client errors.
var (
	ErrUnauthorized = errors.New("authorization rejected")
	ErrUnknownOwner = errors.New("unknown owner")
)

// Server/transport errors.
var (
	ErrAPIRequest  = errors.New("API request failed")
	ErrAPIResponse = errors.New("unexpected API response")
)
