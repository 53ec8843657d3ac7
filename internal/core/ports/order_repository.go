package ports

import (
	"context"

	"github.com/storefront/customer-api/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByIdempotencyKey looks the key up within one buyer's orders. An
	// empty userID addresses anonymous orders.
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
}
