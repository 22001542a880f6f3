package order

import "errors"

var (
	ErrEmptyBasketCheckout      = errors.New("add items before checking out")
	ErrAddressOwnershipMismatch = errors.New("invalid address selection")
	ErrConcurrentModification   = errors.New("basket was modified concurrently, please retry")
	ErrOrderNotFound            = errors.New("order not found")
	ErrNotAuthorized            = errors.New("not authorized")
	ErrInvalidStatus            = errors.New("invalid order status")
)
