package flow

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidSelection  = errors.New("selection not offered at this level")
	ErrNotPlaced         = errors.New("no position placed")

	// ErrRateLimited classifies a submission refused by the server's
	// rate limit. Backends map their transport's signal onto it.
	ErrRateLimited = errors.New("rate limited")
)
