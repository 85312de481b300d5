package domain

import "errors"

var (
	ErrUnknownResponseKey = errors.New("unknown response key")
	ErrPageNotFound       = errors.New("wiki page not found")
	ErrMalformedDocument  = errors.New("malformed document")
	ErrUnauthorized       = errors.New("actor not authorized")
)
