package httptransport_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pejotadev/fidlink/internal/platform/metrics"
	httptransport "github.com/pejotadev/fidlink/internal/transport/http"
	"github.com/pejotadev/fidlink/pkg/testutil"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
}

func TestRouter(t *testing.T) {
	router := httptransport.NewRouter(slog.Default(), metrics.New(), pingHandler{})

	testutil.Given(t, "the assembled router", func(t *testing.T) {
		testutil.When(t, "calling GET /healthz", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "it should respond ok", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
			})
		})

		testutil.When(t, "calling a module route", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "it should pass through the middleware chain", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
				if rec.Header().Get("X-Request-ID") == "" {
					t.Fatal("expected a request id header")
				}
			})
		})

		testutil.When(t, "calling an unknown route", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/nope", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "it should respond not found", func(t *testing.T) {
				if rec.Code != http.StatusNotFound {
					t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
				}
			})
		})
	})
}
