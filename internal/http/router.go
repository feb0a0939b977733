package http

import (
	"net/http"

	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/shared/metrics"
	"log-analyzer/internal/stores"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates the read-only report server: published reports, run health and metrics.
func NewRouter(reportStore stores.ReportStore, timestampStore stores.TimestampStore, httpLogger loggers.Logger) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	// Initialize handlers
	listReportsHandler := NewListReportsHandler(reportStore)
	getReportHandler := NewGetReportHandler(reportStore)
	healthHandler := NewHealthHandler(timestampStore)

	// Routes
	router.Get("/reports", errorHandlingAdapter(listReportsHandler))
	router.Get("/reports/{date}", errorHandlingAdapter(getReportHandler))
	router.Get("/healthz", errorHandlingAdapter(healthHandler))
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)

	return router
}
