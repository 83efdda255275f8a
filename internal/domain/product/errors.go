package product

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrNameRequired      = errors.New("product name is required")
	ErrNegativePrice     = errors.New("product price cannot be negative")
	ErrNegativeQuantity  = errors.New("product quantity cannot be negative")
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
)
