package client

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrRequestRefused = errors.New("server refused request")
)
