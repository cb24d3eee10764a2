package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andikarachman/go-shop-events/internal/metrics"
)

func NewRouter(service string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, middleware.Recoverer)
	r.Use(logRequests(service))
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}
