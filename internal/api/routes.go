package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/sparkpost-monitor/internal/auth"
	"github.com/ignite/sparkpost-monitor/internal/callback"
	"github.com/ignite/sparkpost-monitor/internal/pixel"
)

// Routes are the handlers SetupRoutes wires into the router. Held as a
// struct rather than individual params so adding an endpoint doesn't ripple
// through every caller's argument list.
type Routes struct {
	Messages  *MessagesHandler
	Topics    *TopicsHandler
	SentCount *SentCountHandler
	Pixel     *pixel.Handler
	Callback  *callback.Handler
	Health    *HealthChecker
}

// SetupRoutes builds the chi router for the dispatch service. verifier gates
// every route except the health check and the open-pixel and
// provider-callback endpoints; the last two have their own auth model (none,
// and header-gated, respectively).
func SetupRoutes(rt Routes, verifier *auth.Verifier) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(withCorrelationID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "x-amz-sns-message-type"},
		MaxAge:         300,
	}))

	r.Get("/health", rt.Health.ServeHTTP)

	r.Get("/v1/events/open", rt.Pixel.ServeHTTP)
	r.Post("/v1/events/results", rt.Callback.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(verifier.Middleware)

		r.Post("/v1/messages", rt.Messages.ServeHTTP)
		r.Get("/v1/topics/{topic_id}", rt.Topics.Retrieve)
		r.Delete("/v1/topics/{topic_id}", rt.Topics.Stop)
		r.Get("/v1/events/counts/sent", rt.SentCount.ServeHTTP)
	})

	return r
}
