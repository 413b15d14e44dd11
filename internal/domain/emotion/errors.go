package emotion

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
	ErrDuplicateName   = errors.New("duplicate emotion name")
)
