package discover

import (
	"net/http"
	"strings"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/api/handlers"
)

// Response is the body returned for a successful discovery
type Response struct {
	Resource  string             `json:"resource"`
	Authority string             `json:"authority"`
	ActorURL  string             `json:"actorUrl,omitempty"`
	Document  webfinger.Document `json:"document"`
}

// GetDiscoverHandler resolves remote actors through WebFinger
type GetDiscoverHandler struct {
	discoverer webfinger.Discoverer
}

// NewGetDiscoverHandler creates a new discover handler
func NewGetDiscoverHandler(discoverer webfinger.Discoverer) *GetDiscoverHandler {
	return &GetDiscoverHandler{
		discoverer: discoverer,
	}
}

// HandleGetDiscover looks up the discovery document for an actor
// GET /api/v1/discover?identifier=alice@example.com
// Public endpoint - no authentication required
func (h *GetDiscoverHandler) HandleGetDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identifier := strings.TrimSpace(r.URL.Query().Get("identifier"))
	if identifier == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "identifier is required")
		return
	}
	if len(identifier) > webfinger.MaxIdentifierLength {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "identifier is too long")
		return
	}

	doc, err := h.discoverer.Discover(r.Context(), identifier)
	if err != nil {
		handleDiscoveryError(w, identifier, err)
		return
	}

	ref := webfinger.Normalize(identifier, false)
	handlers.WriteJSON(w, http.StatusOK, Response{
		Resource:  ref.Resource,
		Authority: ref.Authority,
		ActorURL:  doc.ActorURL(),
		Document:  doc,
	})
}
