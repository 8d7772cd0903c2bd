package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("object not found")
	ErrCorrupted    = errors.New("object corrupted")
	ErrBadResponse  = errors.New("malformed server response")
)
