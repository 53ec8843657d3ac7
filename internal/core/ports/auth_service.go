package ports

import (
	"context"
	"time"

	"github.com/storefront/customer-api/internal/core/domain"
)

// SignupInput is the person record submitted on registration.
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Role     string
	Address  domain.Address
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers registration, authentication and order history.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyToken(ctx context.Context, token string) (*Claims, error)
	UpdateOrderHistory(ctx context.Context, userID, orderID string) (*domain.User, error)
	GetOrderHistory(ctx context.Context, userID string) ([]string, error)
	Clear(ctx context.Context) (int64, error)
}
