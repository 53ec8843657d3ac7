package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/customer-api/internal/core/domain"
	"github.com/storefront/customer-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry order creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// OrderHistoryReader is the slice of the auth service the order routes need.
type OrderHistoryReader interface {
	GetOrderHistory(ctx context.Context, userID string) ([]string, error)
}

type OrderHandler struct {
	orders  ports.OrderService
	history OrderHistoryReader
}

func NewOrderHandler(orders ports.OrderService, history OrderHistoryReader) *OrderHandler {
	return &OrderHandler{orders: orders, history: history}
}

// Create places an order. Authenticated callers get the order appended to
// their history; anonymous callers do not.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client-generated key for safe retries"
// @Param        body             body      createOrderRequest  true   "Order contents"
// @Success      201              {object}  orderResponse
// @Success      200              {object}  orderResponse  "Replay of an earlier request with the same key"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		return domain.NewValidationError(HeaderIdempotencyKey + " is too long")
	}

	res, err := h.orders.PlaceOrder(c.Request().Context(), ports.PlaceOrderInput{
		UserID:         ctxUserID(c),
		Items:          req.Items,
		OrderValue:     req.OrderValue,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, orderResponse{Order: res.Order})
}

// Get returns a single order.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse{Order: order})
}

// History returns the caller's order history, oldest first.
//
// @Summary      Own order history
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  orderHistoryResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/orders/history [get]
func (h *OrderHandler) History(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return h.writeHistory(c, claims.UserID)
}

// UserHistory returns another user's order history. Admin only.
//
// @Summary      Order history of a user
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  orderHistoryResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id}/orders [get]
func (h *OrderHandler) UserHistory(c echo.Context) error {
	return h.writeHistory(c, c.Param("id"))
}

func (h *OrderHandler) writeHistory(c echo.Context, userID string) error {
	history, err := h.history.GetOrderHistory(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderHistoryResponse{UserID: userID, OrderHistory: history})
}
