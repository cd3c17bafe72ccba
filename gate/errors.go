package gate

import "errors"

var (
	// ErrUnauthenticated means no subject was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the subject is known but may not act.
	ErrForbidden = errors.New("forbidden")
)
