package handler

import (
	"time"

	"github.com/storefront/customer-api/internal/core/domain"
)

type addressRequest struct {
	Street string `json:"street"`
	Zip    string `json:"zip"`
	City   string `json:"city"`
}

func (a *addressRequest) toDomain() domain.Address {
	if a == nil {
		return domain.Address{}
	}
	return domain.Address{Street: a.Street, Zip: a.Zip, City: a.City}
}

type registerRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Role     string          `json:"role" validate:"omitempty,oneof=customer admin"`
	Address  *addressRequest `json:"address"`
	// Adress is the misspelled key older clients still send.
	Adress *addressRequest `json:"adress" swaggerignore:"true"`
}

// address prefers the correctly spelled key.
func (r registerRequest) address() domain.Address {
	if r.Address != nil {
		return r.Address.toDomain()
	}
	return r.Adress.toDomain()
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type meResponse struct {
	UserID  string         `json:"userId"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	Role    string         `json:"role"`
	Address domain.Address `json:"address"`
}

type createOrderRequest struct {
	Items      []int   `json:"items" validate:"required,min=1"`
	OrderValue float64 `json:"orderValue" validate:"gte=0"`
}

type orderResponse struct {
	Order *domain.Order `json:"order"`
}

type orderHistoryResponse struct {
	UserID       string   `json:"userId"`
	OrderHistory []string `json:"orderHistory"`
}

type errorResponse struct {
	Error string `json:"error"`
}
