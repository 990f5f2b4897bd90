package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/token"
)

type gateFunc func(ctx context.Context, subjectID int64) (bool, error)

func (f gateFunc) IsActive(ctx context.Context, subjectID int64) (bool, error) {
	return f(ctx, subjectID)
}

func run(t *testing.T, header string, gate AccountGate) (*httptest.ResponseRecorder, error) {
	t.Helper()
	iss := NewTestIssuer()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Middleware(iss, gate)
	handler := mw(func(c echo.Context) error {
		if SubjectIDFromContext(c.Request().Context()) == 0 {
			t.Error("expected subject id in context")
		}
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

// NewTestIssuer returns the issuer used across the middleware tests.
func NewTestIssuer() *token.Issuer {
	return token.NewIssuer("auth-test-secret", 30*time.Minute)
}

func activeGate(active bool) AccountGate {
	return gateFunc(func(context.Context, int64) (bool, error) { return active, nil })
}

func TestMiddleware_ValidToken(t *testing.T) {
	tok, err := NewTestIssuer().Issue(9, "staff")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = run(t, "Bearer "+tok, activeGate(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	_, err := run(t, "", activeGate(true))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddleware_BadToken(t *testing.T) {
	_, err := run(t, "Bearer garbage", activeGate(true))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMiddleware_DeactivatedAccount(t *testing.T) {
	tok, _ := NewTestIssuer().Issue(9, "patient")
	_, err := run(t, "Bearer "+tok, activeGate(false))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestMiddleware_GateError(t *testing.T) {
	tok, _ := NewTestIssuer().Issue(9, "patient")
	gate := gateFunc(func(context.Context, int64) (bool, error) {
		return false, errors.New("user not found")
	})
	_, err := run(t, "Bearer "+tok, gate)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}
