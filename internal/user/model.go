package user

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
)

type User struct {
	ID        uint
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Role      Role
	CreatedAt time.Time
}
