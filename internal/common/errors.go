package common

import "errors"

// ErrInvalidToken marks a malformed or undecodable identity token.
var ErrInvalidToken = errors.New("invalid token")
