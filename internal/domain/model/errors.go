package model

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidCandle   = errors.New("invalid candle")
)
