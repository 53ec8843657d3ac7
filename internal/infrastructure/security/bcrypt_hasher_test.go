package security

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/customer-api/internal/core/domain"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("12345")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "12345", hash)
	assert.True(t, hasher.Check("12345", hash))
}

func TestBcryptHasher_SaltsEveryHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("pw")
	assert.NoError(t, err)
	second, err := hasher.Hash("pw")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("pw", first))
	assert.True(t, hasher.Check("pw", second))
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("12345")
	assert.NoError(t, err)

	assert.False(t, hasher.Check("321", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check("12345", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Check("12345", ""))
}

func TestBcryptHasher_EmptyPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash("")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestBcryptHasher_Cost(t *testing.T) {
	hasher := NewBcryptHasher(6)
	hash, err := hasher.Hash("12345")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, 6, cost)

	// out-of-range costs fall back to the default
	assert.Equal(t, DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultCost, NewBcryptHasher(99).cost)
}
