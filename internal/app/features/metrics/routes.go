// internal/app/features/metrics/routes.go
package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes exposes the default Prometheus registry. Mounted under /metrics.
func Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/", promhttp.Handler())
	return r
}
