package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrProductsUnavailable = errors.New("products not available")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidTransition   = errors.New("invalid status transition")
)
