package repository

import "errors"

// Sentinel errors shared by every store adapter. Services translate these
// into their own error vocabulary; handlers never see them directly.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStockExhausted is returned by ReserveStock when a campaign has no
	// remaining quantity.
	ErrStockExhausted = errors.New("campaign stock exhausted")

	// ErrDuplicate is returned when an insert violates a uniqueness rule,
	// such as referring the same referee twice.
	ErrDuplicate = errors.New("duplicate record")
)
