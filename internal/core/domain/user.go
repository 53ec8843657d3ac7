package domain

import (
	"strings"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is the delivery address embedded in every user document.
type Address struct {
	Street string `json:"street" bson:"street"`
	Zip    string `json:"zip" bson:"zip"`
	City   string `json:"city" bson:"city"`
}

// Normalize trims surrounding whitespace from every field.
func (a Address) Normalize() Address {
	return Address{
		Street: strings.TrimSpace(a.Street),
		Zip:    strings.TrimSpace(a.Zip),
		City:   strings.TrimSpace(a.City),
	}
}

// User is a registered customer or administrator.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Address      Address   `json:"address"`
	OrderHistory []string  `json:"orderHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// RoleOrDefault returns role, or RoleCustomer when role is empty.
func RoleOrDefault(role string) string {
	if role == "" {
		return RoleCustomer
	}
	return role
}
