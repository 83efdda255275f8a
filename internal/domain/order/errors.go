package order

import "errors"

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrNoUpdateFields          = errors.New("no fields provided for update")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidQuantity         = errors.New("order quantity must be positive")
)
