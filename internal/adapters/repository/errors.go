package repository

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotFound     = errors.New("candle not found")
	ErrNotOwner     = errors.New("not the candle owner")
	ErrInvalidLimit = errors.New("invalid page limit")
	ErrStoreClosed  = errors.New("store closed")
)
