package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carerelay/carerelay/internal/application"
)

// Handler is the HTTP adapter entrypoint for pairing use-cases.
// Keeping only application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers pairing HTTP routes and middleware stack.
// The redeem and daily-signal endpoints stay public: the dependent's device
// holds no bearer token, only the pairing credentials themselves.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/pairing/v1", func(r chi.Router) {
		r.Post("/redeem", handler.redeem)
		r.Post("/redeem/link", handler.redeemLink)
		r.Post("/pairings/{pairing_id}/confirm", handler.confirmDay)
		r.Post("/pairings/{pairing_id}/help", handler.requestHelp)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/pairings", handler.createPairing)
			r.Get("/pairings", handler.listPairings)
			r.Get("/pairings/{pairing_id}", handler.getPairing)
			r.Delete("/pairings/{pairing_id}", handler.revokePairing)
			r.Put("/pairings/{pairing_id}/care-actions", handler.setCareActions)
			r.Post("/episodes/{episode_id}/advance", handler.advanceEpisode)
			r.Post("/episodes/{episode_id}/resolve", handler.resolveEpisode)
			r.Post("/episodes/{episode_id}/debrief", handler.recordDebrief)
		})
	})

	return r
}
