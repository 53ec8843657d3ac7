package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront/customer-api/internal/api/middleware"
	"github.com/storefront/customer-api/internal/core/domain"
	"github.com/storefront/customer-api/internal/core/ports"
)

type stubAuthService struct {
	signupFn  func(ctx context.Context, input ports.SignupInput) (*domain.User, error)
	loginFn   func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	historyFn func(ctx context.Context, userID string) ([]string, error)
}

func (s *stubAuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) VerifyToken(context.Context, string) (*ports.Claims, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubAuthService) UpdateOrderHistory(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not used")
}

func (s *stubAuthService) GetOrderHistory(ctx context.Context, userID string) ([]string, error) {
	return s.historyFn(ctx, userID)
}

func (s *stubAuthService) Clear(context.Context) (int64, error) {
	return 0, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.Name != "Alice" || in.Role != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Address.City != "Berlin" {
				t.Fatalf("address not forwarded: %+v", in.Address)
			}
			return &domain.User{
				ID:           "64b7f0c2a1b2c3d4e5f60718",
				Email:        in.Email,
				PasswordHash: "$2a$10$hash",
				Name:         in.Name,
				Role:         domain.RoleCustomer,
				Address:      in.Address,
				OrderHistory: []string{},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/api/register",
		`{"email":"alice@example.com","password":"secret","name":"Alice","address":{"street":"Main 1","zip":"10115","city":"Berlin"}}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user := resp["user"]
	if user["email"] != "alice@example.com" || user["role"] != domain.RoleCustomer {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("response leaks the hash: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_LegacyAddressKey(t *testing.T) {
	e := newTestEcho()
	var got domain.Address
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			got = in.Address
			return &domain.User{Email: in.Email}, nil
		},
	}

	c, _ := jsonRequest(e, http.MethodPost, "/api/register",
		`{"email":"bob@example.com","password":"pw","name":"Bob","adress":{"street":"Elm 2","zip":"02110","city":"Boston"}}`)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.City != "Boston" || got.Street != "Elm 2" {
		t.Fatalf("legacy address key ignored: %+v", got)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}

	c, _ := jsonRequest(e, http.MethodPost, "/api/register", `{"email":"bob@example.com","password":"pw","name":"Bob"}`)

	err := NewAuthHandler(stub).Register(c)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := jsonRequest(e, http.MethodPost, "/api/register", "not-json")

	if code := httpCode(t, NewAuthHandler(stub).Register(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := jsonRequest(e, http.MethodPost, "/api/register", `{"email":"nope","password":"","name":"Bob","role":"root"}`)

	err := NewAuthHandler(stub).Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	msg := ve.Error()
	for _, want := range []string{"email must be a valid email", "password is required", "role must be one of"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				Token:     "token123",
				ExpiresAt: expires,
				User:      &domain.User{Email: email, Role: domain.RoleAdmin},
			}, nil
		},
	}

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth", `{"email":"alice@example.com","password":"secret"}`)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	if resp["expiresAt"] != "2026-01-01T12:00:00Z" {
		t.Fatalf("unexpected expiresAt: %v", resp["expiresAt"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, reason := range []error{domain.ErrEmailNotFound, domain.ErrPasswordMismatch} {
		t.Run(reason.Error(), func(t *testing.T) {
			e := newTestEcho()
			stub := &stubAuthService{
				loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
					return nil, reason
				},
			}

			c, rec := jsonRequest(e, http.MethodPost, "/api/auth", `{"email":"alice@example.com","password":"wrong"}`)

			err := NewAuthHandler(stub).Login(c)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("no token may be written on failure: %s", rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ClaimsKey, &ports.Claims{
		UserID: "64b7f0c2a1b2c3d4e5f60718",
		Email:  "alice@example.com",
		Role:   domain.RoleCustomer,
	})

	if err := NewAuthHandler(&stubAuthService{}).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["userId"] != "64b7f0c2a1b2c3d4e5f60718" || resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutClaims(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), httptest.NewRecorder())

	if code := httpCode(t, NewAuthHandler(&stubAuthService{}).Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
