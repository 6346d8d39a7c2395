package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("note not found")
	ErrConflict       = errors.New("login already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrWrongPassword  = errors.New("wrong password")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrUnexpectedCode = errors.New("unexpected response")
)
