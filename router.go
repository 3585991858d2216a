package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newProxyRouter wraps h so that it receives every path and every method,
// including ones a route table would reject before CORS headers are set.
func newProxyRouter(h http.Handler) http.Handler {
	return chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	).Handler(h)
}

func newMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
