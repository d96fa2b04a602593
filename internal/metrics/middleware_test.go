package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newInstrumentedRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/conversations/{conversationID}/messages", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/silent", func(_ http.ResponseWriter, _ *http.Request) {})
	return r
}

func serve(r http.Handler, path string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	r := newInstrumentedRouter()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		http.MethodGet, "/v1/conversations/{conversationID}/messages", "200"))

	serve(r, "/v1/conversations/abc/messages")
	serve(r, "/v1/conversations/xyz/messages")

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		http.MethodGet, "/v1/conversations/{conversationID}/messages", "200"))

	if after-before != 2 {
		t.Fatalf("counter delta = %v, want 2", after-before)
	}
}

func TestMiddleware_LabelsStatus(t *testing.T) {
	r := newInstrumentedRouter()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500"))
	serve(r, "/boom")
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500"))

	if after-before != 1 {
		t.Fatalf("counter delta = %v, want 1", after-before)
	}
}

func TestMiddleware_DefaultsStatusTo200(t *testing.T) {
	r := newInstrumentedRouter()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/silent", "200"))
	serve(r, "/silent")
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/silent", "200"))

	if after-before != 1 {
		t.Fatalf("counter delta = %v, want 1", after-before)
	}
}
