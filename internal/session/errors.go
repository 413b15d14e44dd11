package session

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidToken    = errors.New("invalid session token")
	ErrChallengeFailed = errors.New("challenge verification failed")
)
