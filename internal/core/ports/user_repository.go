package ports

import (
	"context"

	"github.com/storefront/customer-api/internal/core/domain"
)

// UserRepository defines persistence operations for user documents.
type UserRepository interface {
	// Create inserts a new user and returns it with its generated ID.
	// A conflicting email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// PushOrder atomically appends orderID to the user's order history and
	// returns the updated user. An orderID already in the history is not
	// appended again.
	PushOrder(ctx context.Context, userID, orderID string) (*domain.User, error)
	// DeleteAll removes every user and reports how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}
