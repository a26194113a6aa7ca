// Package api exposes the analytics engine over HTTP. The handlers do
// the collaborator work the core leaves to its callers: assembling
// observation series from storage, persisting results, and mapping
// domain errors onto status codes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"hydrospark/core/rates"
	"hydrospark/internal/cache"
	"hydrospark/storage"
)

// Server holds the API's collaborators
type Server struct {
	store    storage.Store
	schedule *rates.Schedule
	bills    *cache.BillCache
	sigma    float64
}

// NewServer creates an API server. bills may be nil when no cache is
// configured.
func NewServer(store storage.Store, schedule *rates.Schedule, bills *cache.BillCache, sigmaThreshold float64) *Server {
	return &Server{
		store:    store,
		schedule: schedule,
		bills:    bills,
		sigma:    sigmaThreshold,
	}
}

// Router assembles the HTTP routes
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/billing", func(r chi.Router) {
			r.Post("/calculate", s.handleCalculateBill)
			r.Post("/generate", s.handleGenerateBill)
		})

		r.Post("/customers", s.handleCreateCustomer)
		r.Route("/customers/{id}", func(r chi.Router) {
			r.Get("/usage", s.handleGetUsage)
			r.Post("/usage", s.handleAddUsage)
			r.Get("/bills", s.handleListBills)
			r.Get("/bills/breakdown", s.handleBillBreakdown)
			r.Get("/anomalies", s.handleDetectAnomalies)
			r.Get("/pattern", s.handlePattern)
			r.Get("/forecast", s.handleForecastUsage)
			r.Get("/forecast/bill", s.handleForecastBill)
			r.Get("/insights", s.handleInsights)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "hydrospark"})
}
