package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusPaid, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// AddressSnapshot holds the address fields copied onto an order at
// checkout. Later edits to the address book never touch these.
type AddressSnapshot struct {
	Name     string
	Address1 string
	Address2 *string
	ZipCode  string
	City     string
	Country  string
}

type Order struct {
	ID        uint
	UserID    *uint
	BasketID  uuid.UUID
	Status    Status
	Billing   AddressSnapshot
	Shipping  AddressSnapshot
	Total     int
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []Line

	// CustomerEmail is populated by dashboard queries that join users.
	CustomerEmail *string
}

type Line struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Quantity  int
	Price     int

	ProductName string
}

// Filter narrows the staff dashboard listing. Nil fields are ignored.
type Filter struct {
	CustomerEmail *string
	Status        *Status
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	UpdatedFrom   *time.Time
	UpdatedTo     *time.Time
}
