package ports

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/customer-api/internal/core/domain"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Check reports whether password matches hash. Malformed hashes never match.
	Check(password, hash string) bool
}

// Claims is the payload carried by an access token.
type Claims struct {
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	UserID  string         `json:"userId"`
	Role    string         `json:"role"`
	Address domain.Address `json:"address"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates access tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	// Verify returns the embedded claims; every failure wraps domain.ErrInvalidToken.
	Verify(token string) (*Claims, error)
}
