package catalog

import "time"

type Product struct {
	ID          uint
	Name        string
	Slug        string
	Description string
	Price       int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tags []Tag
}

type Tag struct {
	ID     uint
	Name   string
	Slug   string
	Active bool
}
