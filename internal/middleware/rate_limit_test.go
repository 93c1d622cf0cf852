package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("sub:a") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow("sub:a") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentCallers(t *testing.T) {
	rl := NewRateLimiter(10, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("sub:a") {
			t.Errorf("Caller a request %d should be allowed", i+1)
		}
	}
	if rl.Allow("sub:a") {
		t.Error("Caller a should be rate limited")
	}

	for i := 0; i < 3; i++ {
		if !rl.Allow("sub:b") {
			t.Errorf("Caller b request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_GetStateUnknownKey(t *testing.T) {
	rl := NewRateLimiter(10, 4)
	defer rl.Stop()

	remaining, _ := rl.GetState("ip:10.0.0.1")
	if remaining != 4 {
		t.Errorf("Expected full burst of 4, got %d", remaining)
	}
}

func TestRateLimitMiddleware_LimitsBySubject(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(10, 2)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	principal := &domain.Principal{Subject: "auth0|abc", Role: domain.RoleAdmin}

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
		req = req.WithContext(WithPrincipal(req.Context(), principal))
		rec := httptest.NewRecorder()
		if err := RateLimitMiddleware(rl)(handler)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return rec
	}

	for i := 0; i < 2; i++ {
		rec := do()
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "10" {
			t.Errorf("Request %d: expected X-RateLimit-Limit 10, got %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestRateLimitMiddleware_FallsBackToClientIP(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(10, 1)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	codes := make([]int, 0, 3)
	for _, ip := range []string{"10.0.0.1:1000", "10.0.0.1:1001", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		if err := RateLimitMiddleware(rl)(handler)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusOK {
		t.Errorf("Unexpected status sequence %v", codes)
	}
}
