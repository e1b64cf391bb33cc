package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-console/internal/config"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/chats/:id", http.MethodGet, 200, time.Millisecond)
	m.RecordRequest("/chats/:id", http.MethodGet, 200, time.Millisecond)
	m.RecordRequest("/chats/:id", http.MethodGet, 404, time.Millisecond)
	m.RecordError("/chats/:id", http.MethodGet, "NOT_FOUND")

	if got := m.Requests("/chats/:id", http.MethodGet, 200); got != 2 {
		t.Fatalf("expected 2 ok requests, got %d", got)
	}
	if got := m.Requests("/chats/:id", http.MethodGet, 404); got != 1 {
		t.Fatalf("expected 1 not found request, got %d", got)
	}
	if got := m.Errors("/chats/:id", http.MethodGet, "NOT_FOUND"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", http.MethodGet, 200, 0)
	nilMetrics.RecordError("/", http.MethodGet, "X")
}

func TestRequestLoggerLevelsAndRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/chats/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return c.SendStatus(http.StatusNotFound)
		}
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusInternalServerError)
	})

	for _, path := range []string{"/chats/a", "/chats/b", "/chats/missing", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
	}

	if got := metrics.Requests("/chats/:id", http.MethodGet, 200); got != 2 {
		t.Fatalf("expected requests counted by route pattern, got %d", got)
	}
	if got := logs.FilterLevelExact(zapcore.WarnLevel).Len(); got != 1 {
		t.Fatalf("expected 1 warn entry, got %d", got)
	}
	if got := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); got != 1 {
		t.Fatalf("expected 1 error entry, got %d", got)
	}
}

func TestRequestLoggerRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), NewMetrics()))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "req-1" {
		t.Fatalf("expected incoming request id echoed, got %q", got)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	generated := resp.Header.Get(RequestIDHeader)
	if generated == "" || generated == "req-1" {
		t.Fatalf("expected a fresh request id, got %q", generated)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-1" {
		t.Fatalf("expected request_id field, got %v", got)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.AppConfig{Name: "console", Env: "production"}, config.LoggerConfig{Level: "loud"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled for unknown levels")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be enabled")
	}
}
