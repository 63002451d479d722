package web

import (
	"log/slog"
	"net/http"
	"strings"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/version"
)

// Handlers provides HTTP handlers for the Lamia web interface.
type Handlers struct {
	templates  *Templates
	discoverer webfinger.Discoverer
	siteName   string
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, discoverer webfinger.Discoverer, siteName string) *Handlers {
	return &Handlers{
		templates:  templates,
		discoverer: discoverer,
		siteName:   siteName,
	}
}

// IntroductionPageData holds data for the introduction page template.
type IntroductionPageData struct {
	SiteName string
	Version  string
}

// IntroductionHandler handles GET / requests and renders the introduction page.
func (h *Handlers) IntroductionHandler(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path - let other routes handle their own paths
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := IntroductionPageData{
		SiteName: h.siteName,
		Version:  version.Version,
	}

	if err := h.templates.Render(w, "index.html", data); err != nil {
		slog.Error("failed to render introduction page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// LookupPageData holds data for the actor lookup template.
type LookupPageData struct {
	SiteName   string
	Identifier string
	Resource   string
	Authority  string
	Subject    string
	ActorURL   string
	Error      string
	Links      []webfinger.Link
	Found      bool
}

// LookupHandler renders the actor lookup page
// GET /lookup?identifier=alice@example.com
func (h *Handlers) LookupHandler(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.URL.Query().Get("identifier"))
	data := LookupPageData{
		SiteName:   h.siteName,
		Identifier: identifier,
	}

	status := http.StatusOK
	switch {
	case identifier == "":
	case len(identifier) > webfinger.MaxIdentifierLength:
		data.Error = "the identifier is too long"
		status = http.StatusBadRequest
	default:
		ref := webfinger.Normalize(identifier, false)
		data.Resource = ref.Resource
		data.Authority = ref.Authority

		doc, err := h.discoverer.Discover(r.Context(), identifier)
		switch {
		case err == nil:
			data.Found = true
			data.Subject = doc.Subject()
			data.ActorURL = doc.ActorURL()
			data.Links = doc.Links()
		case webfinger.IsTransportError(err):
			slog.Info("lookup: authority unreachable", "identifier", identifier, "error", err)
			data.Error = "the remote server could not be reached"
			status = http.StatusBadGateway
		case webfinger.IsDecodeError(err):
			slog.Info("lookup: invalid discovery document", "identifier", identifier, "error", err)
			data.Error = "the remote server returned an invalid response"
			status = http.StatusBadGateway
		default:
			slog.Error("lookup: discovery failed", "identifier", identifier, "error", err)
			data.Error = "an unexpected error occurred"
			status = http.StatusInternalServerError
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "lookup.html", data); err != nil {
		slog.Error("failed to render lookup template", "error", err)
	}
}
