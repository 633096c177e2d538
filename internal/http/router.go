// Package httpapi assembles the service's HTTP surface.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	matrixhandler "entmatrix/internal/matrix/handler"
	"entmatrix/pkg/platform/httputil"
)

// HealthChecker reports the health of an optional dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter wires all endpoints: the matrix API, Prometheus metrics, and a
// health probe.
func NewRouter(matrix *matrixhandler.Handler, redis HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"status": "ok"}
		if redis != nil {
			if err := redis.Health(req.Context()); err != nil {
				status["redis"] = "down"
				httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["redis"] = "ok"
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	})
	r.Handle("/metrics", promhttp.Handler())

	matrix.Register(r)
	return r
}
