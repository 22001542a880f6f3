package basket

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidProduct  = errors.New("product is inactive or does not exist")
	ErrInvalidQuantity = errors.New("invalid line quantity")

	// -- Resource State --
	ErrLineNotFound           = errors.New("basket line not found")
	ErrBasketNotFound         = errors.New("basket not found")
	ErrBasketAlreadyConverted = errors.New("basket has already been checked out")

	// -- Database & Operation Failures --
	ErrFailedCreateBasket = errors.New("failed to create basket")
	ErrFailedGetLines     = errors.New("failed to get basket lines")
)
