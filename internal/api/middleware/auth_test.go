package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront/customer-api/internal/core/domain"
	"github.com/storefront/customer-api/internal/core/ports"
)

type stubVerifier struct {
	claims *ports.Claims
	err    error
	got    string
}

func (s *stubVerifier) VerifyToken(_ context.Context, token string) (*ports.Claims, error) {
	s.got = token
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func validVerifier() *stubVerifier {
	return &stubVerifier{claims: &ports.Claims{
		Email:  "alice@example.com",
		UserID: "64b7f0c2a1b2c3d4e5f60718",
		Role:   domain.RoleAdmin,
	}}
}

func newCtx(authHeader string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e, e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, c, rec := newCtx("Bearer signed.token.value")
	verifier := validVerifier()

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		if c.Get(UserIDKey) != "64b7f0c2a1b2c3d4e5f60718" {
			t.Fatalf("user_id not set")
		}
		if c.Get(RoleKey) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		claims, ok := c.Get(ClaimsKey).(*ports.Claims)
		if !ok || claims.Email != "alice@example.com" {
			t.Fatalf("claims not set: %+v", c.Get(ClaimsKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if verifier.got != "signed.token.value" {
		t.Fatalf("verifier got %q", verifier.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_LowercaseScheme(t *testing.T) {
	_, c, _ := newCtx("bearer signed.token.value")

	handler := Auth(validVerifier())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]struct {
		header   string
		verifier *stubVerifier
	}{
		"missing header":   {header: "", verifier: validVerifier()},
		"wrong scheme":     {header: "Token abc", verifier: validVerifier()},
		"empty token":      {header: "Bearer   ", verifier: validVerifier()},
		"verifier refuses": {header: "Bearer not-a-token", verifier: &stubVerifier{err: domain.ErrInvalidToken}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e, c, rec := newCtx(tc.header)

			handler := Auth(tc.verifier)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_KeepsVerifierCause(t *testing.T) {
	_, c, _ := newCtx("Bearer expired")
	handler := Auth(&stubVerifier{err: domain.ErrInvalidToken})(func(c echo.Context) error {
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if !errors.Is(he.Internal, domain.ErrInvalidToken) {
		t.Fatalf("expected internal ErrInvalidToken, got %v", he.Internal)
	}
}

func TestOptionalAuth_Anonymous(t *testing.T) {
	_, c, rec := newCtx("")
	verifier := validVerifier()

	handler := OptionalAuth(verifier)(func(c echo.Context) error {
		if c.Get(UserIDKey) != nil {
			t.Fatalf("anonymous request must not carry a user id")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if verifier.got != "" {
		t.Fatalf("verifier should not be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	_, c, _ := newCtx("Bearer signed.token.value")

	handler := OptionalAuth(validVerifier())(func(c echo.Context) error {
		if c.Get(UserIDKey) != "64b7f0c2a1b2c3d4e5f60718" {
			t.Fatalf("user_id not set")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestOptionalAuth_InvalidToken(t *testing.T) {
	e, c, rec := newCtx("Bearer tampered")

	handler := OptionalAuth(&stubVerifier{err: domain.ErrInvalidToken})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
