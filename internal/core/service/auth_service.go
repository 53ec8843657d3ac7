package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/customer-api/internal/core/domain"
	"github.com/storefront/customer-api/internal/core/ports"
	"github.com/storefront/customer-api/internal/pkg/metrics"
)

// AuthService implements registration, login and order-history upkeep.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// unknownUserPassword backs the hash compared on logins for unknown emails.
const unknownUserPassword = "unknown-user-placeholder"

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a new user. The email lookup is a fast path only; the
// unique index on email is what rejects concurrent duplicates.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	if err := validateSignup(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         domain.RoleOrDefault(in.Role),
		Address:      in.Address.Normalize(),
		OrderHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	metrics.UsersRegisteredTotal.WithLabelValues(created.Role).Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// Login checks the credentials and issues an access token. The returned
// error is ErrEmailNotFound or ErrPasswordMismatch on bad credentials; both
// wrap ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_input").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Check(password, s.unknownUserHash())
			metrics.LoginAttemptsTotal.WithLabelValues("email_not_found").Inc()
			s.log.Info().Str("email", email).Msg("login rejected: email not found")
			return nil, domain.ErrEmailNotFound
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		metrics.LoginAttemptsTotal.WithLabelValues("password_mismatch").Inc()
		s.log.Info().Str("user_id", user.ID).Msg("login rejected: password not correct")
		return nil, domain.ErrPasswordMismatch
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(unknownUserPassword)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to hash placeholder password")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) VerifyToken(_ context.Context, token string) (*ports.Claims, error) {
	return s.tokens.Verify(token)
}

// UpdateOrderHistory appends orderID to the user's order history. Appending an
// order already in the history leaves it unchanged. An unknown user yields
// domain.ErrUserNotFound and nothing is written.
func (s *AuthService) UpdateOrderHistory(ctx context.Context, userID, orderID string) (*domain.User, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	user, err := s.repo.PushOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("user_id", userID).Str("order_id", orderID).Msg("order appended to history")
	return user, nil
}

// GetOrderHistory returns the user's order references in placement order.
func (s *AuthService) GetOrderHistory(ctx context.Context, userID string) ([]string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrderHistory == nil {
		return []string{}, nil
	}
	return user.OrderHistory, nil
}

// Clear deletes every user. Test fixtures only; no route exposes it.
func (s *AuthService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear users: %w", err)
	}
	s.log.Warn().Int64("deleted", n).Msg("user collection cleared")
	return n, nil
}

func validateSignup(in ports.SignupInput) error {
	var fields []string
	if in.Email == "" {
		fields = append(fields, "email is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, "email must be a valid email")
	}
	if in.Password == "" {
		fields = append(fields, "password is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name is required")
	}
	if in.Role != "" && !domain.ValidRole(in.Role) {
		fields = append(fields, fmt.Sprintf("role must be one of: %s %s", domain.RoleCustomer, domain.RoleAdmin))
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
