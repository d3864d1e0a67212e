package diagnostics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthzReturnsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	Healthz(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Healthz() status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok\n" {
		t.Fatalf("Healthz() body = %q, want %q", rec.Body.String(), "ok\n")
	}
}

func TestObserveTaskDurationDoesNotPanic(t *testing.T) {
	ObserveTaskDuration(5*time.Millisecond, "ok")
	ObserveTaskDuration(5*time.Millisecond, "error")
}

func TestMetricsHandlerServesPrometheusFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Handler() status = %d, want 200", rec.Code)
	}
}
