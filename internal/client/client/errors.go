package client

import "errors"

var (
	ErrWrongSecret       = errors.New("wrong password")
	ErrNotFound          = errors.New("account not found")
	ErrDisabled          = errors.New("account disabled")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrWeakSecret        = errors.New("password too weak")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrInvalidHandle     = errors.New("invalid verification handle")
	ErrAlreadyLinked     = errors.New("credential already linked")
	ErrAlreadyInUse      = errors.New("credential already in use")
	ErrUnavailable       = errors.New("server unavailable")
)
