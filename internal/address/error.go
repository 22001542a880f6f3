package address

import "errors"

var (
	ErrNotAuthenticated = errors.New("unauthenticated")
	ErrAddressNotFound  = errors.New("address not found")
	ErrInvalidAddressID = errors.New("invalid address id")
)
