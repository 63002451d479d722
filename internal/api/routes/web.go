package routes

import (
	"github.com/go-chi/chi/v5"

	"Lamia/internal/web"
)

// RegisterWebRoutes registers the web pages and static assets
func RegisterWebRoutes(r chi.Router, handlers *web.Handlers, staticDir string) {
	r.Get("/", handlers.IntroductionHandler)
	r.Get("/lookup", handlers.LookupHandler)
	r.Handle("/static/*", web.StaticFileServer(staticDir))
}
