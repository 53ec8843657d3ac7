package ports

import (
	"context"

	"github.com/storefront/customer-api/internal/core/domain"
)

// PlaceOrderInput carries the data needed to place an order.
type PlaceOrderInput struct {
	// UserID is empty for anonymous orders.
	UserID         string
	Items          []int
	OrderValue     float64
	IdempotencyKey string
}

// OrderResult is returned by PlaceOrder.
type OrderResult struct {
	Order *domain.Order
	// AlreadyExisted is true when the Idempotency-Key matched an earlier order.
	AlreadyExisted bool
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}
