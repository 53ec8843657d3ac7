package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const StatusPlaced OrderStatus = "placed"

// Order is a purchase placed through the storefront. UserID is empty for
// anonymous orders.
type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId,omitempty"`
	Items          []int       `json:"items"`
	OrderValue     float64     `json:"orderValue"`
	Status         OrderStatus `json:"status"`
	IdempotencyKey string      `json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Anonymous reports whether the order was placed without an authenticated user.
func (o *Order) Anonymous() bool {
	return o.UserID == ""
}
