package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/customer-api/internal/core/domain"
	"github.com/storefront/customer-api/internal/core/ports"
	"github.com/storefront/customer-api/internal/pkg/metrics"
)

// IdempotencyStore abstracts the fast idempotency-key cache (Redis). Keys
// are scoped per buyer; an empty userID is the anonymous scope.
type IdempotencyStore interface {
	// Lookup returns the order ID remembered for the buyer's key, or "" when unknown.
	Lookup(ctx context.Context, userID, key string) (string, error)
	Remember(ctx context.Context, userID, key, orderID string) error
}

// OrderHistoryUpdater is the slice of the auth service the order flow needs.
type OrderHistoryUpdater interface {
	UpdateOrderHistory(ctx context.Context, userID, orderID string) (*domain.User, error)
}

type OrderService struct {
	repo    ports.OrderRepository
	history OrderHistoryUpdater
	idem    IdempotencyStore
	logger  zerolog.Logger
	now     func() time.Time
}

func NewOrderService(repo ports.OrderRepository, history OrderHistoryUpdater, idem IdempotencyStore, logger zerolog.Logger) *OrderService {
	return &OrderService{
		repo:    repo,
		history: history,
		idem:    idem,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder persists a new order. If the buyer already used the idempotency
// key, the earlier order is returned instead. For an authenticated buyer the
// order is appended to their history, on replays too, so a retry after a
// failed append completes it.
func (s *OrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.OrderResult, error) {
	if err := validateOrder(in); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if existing := s.replay(ctx, in.UserID, in.IdempotencyKey); existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("order_id", existing.ID).Msg("idempotent replay")
			return s.finishReplay(ctx, existing)
		}
	}

	items := make([]int, len(in.Items))
	copy(items, in.Items)

	order, err := s.repo.Create(ctx, &domain.Order{
		UserID:         in.UserID,
		Items:          items,
		OrderValue:     in.OrderValue,
		Status:         domain.StatusPlaced,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      s.now(),
	})
	if errors.Is(err, domain.ErrDuplicateOrder) {
		// a concurrent request with the same key won the insert
		if existing, findErr := s.repo.FindByIdempotencyKey(ctx, in.UserID, in.IdempotencyKey); findErr == nil {
			return s.finishReplay(ctx, existing)
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := s.appendToHistory(ctx, order); err != nil {
		return nil, err
	}

	// remembered only once the history holds the order
	if in.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, in.UserID, in.IdempotencyKey, order.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to cache idempotency key")
		}
	}

	kind := "anonymous"
	if !order.Anonymous() {
		kind = "authenticated"
	}
	metrics.OrdersPlacedTotal.WithLabelValues(kind).Inc()
	s.logger.Info().Str("order_id", order.ID).Str("user_id", order.UserID).Msg("order placed")

	return &ports.OrderResult{Order: order}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// replay resolves the buyer's idempotency key to a previously created order:
// the cache first, then the orders collection.
func (s *OrderService) replay(ctx context.Context, userID, key string) *domain.Order {
	orderID, err := s.idem.Lookup(ctx, userID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency cache lookup failed")
	}
	if orderID != "" {
		if order, err := s.repo.FindByID(ctx, orderID); err == nil && order.UserID == userID {
			return order
		}
	}

	order, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
	if err != nil || order.UserID != userID {
		return nil
	}
	return order
}

// finishReplay completes a replayed order. The history append is a no-op when
// the first attempt already recorded it.
func (s *OrderService) finishReplay(ctx context.Context, order *domain.Order) (*ports.OrderResult, error) {
	if err := s.appendToHistory(ctx, order); err != nil {
		return nil, err
	}
	return &ports.OrderResult{Order: order, AlreadyExisted: true}, nil
}

func (s *OrderService) appendToHistory(ctx context.Context, order *domain.Order) error {
	if order.Anonymous() {
		return nil
	}
	if _, err := s.history.UpdateOrderHistory(ctx, order.UserID, order.ID); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("place order: update history: %w", err)
		}
		// the order stands even if the buyer's account is gone
		s.logger.Warn().Str("user_id", order.UserID).Str("order_id", order.ID).Msg("order placed for unknown user")
		return nil
	}
	metrics.OrderHistoryAppendsTotal.Inc()
	return nil
}

func validateOrder(in ports.PlaceOrderInput) error {
	var fields []string
	if len(in.Items) == 0 {
		fields = append(fields, "items must contain at least one item")
	}
	if in.OrderValue < 0 {
		fields = append(fields, "orderValue must not be negative")
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}
