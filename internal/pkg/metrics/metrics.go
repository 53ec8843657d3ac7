// Package metrics defines the custom Prometheus metrics of the customer API.
// All metrics are registered with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric, including the HTTP metrics recorded by
// the echoprometheus middleware.
const Namespace = "storefront"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful signups.
// Label:
//   - role: "customer" or "admin"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered, by role.",
	},
	[]string{"role"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "email_not_found", "password_mismatch" or "invalid_input"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersPlacedTotal counts newly placed orders (idempotent replays excluded).
// Label:
//   - buyer: "anonymous" or "authenticated"
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed, by buyer kind.",
	},
	[]string{"buyer"},
)

// OrderHistoryAppendsTotal counts successful order-history updates.
var OrderHistoryAppendsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "order_history_appends_total",
		Help:      "Total number of successful order-history updates, including no-op retries.",
	},
)
