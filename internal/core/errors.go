package core

import "errors"

// Rejected-input errors. All are returned before any book mutation; a
// rejected order is never partially applied.
var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidPrice       = errors.New("limit price must be positive")
	ErrInvalidSide        = errors.New("unknown order side")
	ErrInvalidType        = errors.New("unknown order type")
	ErrInvalidTimeInForce = errors.New("unknown time in force")
	ErrSymbolMismatch     = errors.New("order symbol does not match book")
	ErrDuplicateOrder     = errors.New("order id already resting in book")
	ErrOrderNotFound      = errors.New("order not found")
)
