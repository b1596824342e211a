package ledger

import "errors"

var (
	// ErrInvalidInput is returned when an edit value cannot be interpreted
	ErrInvalidInput = errors.New("invalid input")
	// ErrOutOfRange is returned when an index or buyer does not address an installment
	ErrOutOfRange = errors.New("out of range")
)
