package address

import (
	"github.com/google/uuid"
)

type Address struct {
	ID     uuid.UUID
	UserID uint

	Name     string
	Address1 string
	Address2 *string
	ZipCode  string
	City     string
	Country  string
}

type CreateAddressInput struct {
	Name         string
	AddressLine1 string
	AddressLine2 *string
	ZipCode      string
	City         string
	Country      string
}

type UpdateAddressInput struct {
	AddressID    string
	Name         string
	AddressLine1 string
	AddressLine2 *string
	ZipCode      string
	City         string
	Country      string
}
