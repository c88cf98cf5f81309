package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/v1/flags/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpReqs.WithLabelValues("/v1/flags/{name}", http.MethodGet, http.StatusText(http.StatusTeapot)))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/flags/abc", nil))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("Expected 418, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpReqs.WithLabelValues("/v1/flags/{name}", http.MethodGet, http.StatusText(http.StatusTeapot)))
	if after != before+1 {
		t.Errorf("Expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestInit_Idempotent(t *testing.T) {
	Init()
	Init()

	RegistryFlags.Set(3)
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "registry_flags 3") {
		t.Errorf("Expected registry_flags gauge in output")
	}
}
