package routes

import (
	"github.com/ettra/waitlist-api/internal/handlers"
	"github.com/ettra/waitlist-api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes. The waitlist
// endpoint runs admission control inside its handler; the diagnostic
// email route only gets the coarse per-IP guard.
func RegisterRoutes(
	router chi.Router,
	waitlistHandler *handlers.WaitlistHandler,
	emailTestHandler *handlers.EmailTestHandler,
) {
	router.Post("/api/waitlist", waitlistHandler.Join)

	router.Route("/api/email/test", func(r chi.Router) {
		r.Use(middleware.DiagnosticRateLimit(5))
		r.Get("/", emailTestHandler.Status)
		r.Post("/", emailTestHandler.Send)
	})
}
