package basket

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusSubmitted Status = "SUBMITTED"
)

// Basket is one visitor's in-progress selection. It is created lazily on the
// first add and frozen forever once converted to an order.
type Basket struct {
	ID        uuid.UUID
	UserID    *uint
	Status    Status
	CreatedAt time.Time

	Lines []Line
}

// Line holds one product in a basket. A basket never has two lines for the
// same product; quantity is always >= 1 once persisted.
type Line struct {
	BasketID  uuid.UUID
	ProductID uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from the catalog for display.
	ProductName string
	ProductSlug string
	Price       int
}

func (b *Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}
