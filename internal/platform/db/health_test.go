package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serveHealth(t *testing.T, h echo.HandlerFunc) (int, healthResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return rec.Code, body
}

func TestHealthHandler_MemoryMode(t *testing.T) {
	code, body := serveHealth(t, HealthHandler(nil))
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if body.Status != "healthy" || body.Storage != "memory" {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Pool != nil {
		t.Errorf("memory mode reported pool stats %+v", body.Pool)
	}
}

func TestHealthHandler_FailingCheck(t *testing.T) {
	audit := Check{Name: "audit", Probe: func(context.Context) error { return errors.New("breaker open") }}
	ok := Check{Name: "cache", Probe: func(context.Context) error { return nil }}

	code, body := serveHealth(t, HealthHandler(nil, ok, audit))
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if body.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", body.Status)
	}
	if body.Checks["audit"] != "breaker open" || body.Checks["cache"] != "ok" {
		t.Errorf("checks = %v", body.Checks)
	}
}
