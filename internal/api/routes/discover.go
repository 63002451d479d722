package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/api/handlers/discover"
)

// RegisterDiscoverRoutes registers the actor discovery API
//
// The endpoint is public and read-only, so any origin may call it. It issues
// an outbound request per call and is covered by the per-IP rate limiter.
func RegisterDiscoverRoutes(r chi.Router, discoverer webfinger.Discoverer) {
	getDiscoverHandler := discover.NewGetDiscoverHandler(discoverer)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept"},
			MaxAge:         300,
		}))

		// GET /api/v1/discover?identifier=alice@example.com
		r.Get("/api/v1/discover", getDiscoverHandler.HandleGetDiscover)
	})
}
