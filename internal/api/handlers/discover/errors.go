package discover

import (
	"log/slog"
	"net/http"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/api/handlers"
)

// handleDiscoveryError maps discovery errors to HTTP responses.
// Remote failures are reported as 502 since the fault lies with the authority.
func handleDiscoveryError(w http.ResponseWriter, identifier string, err error) {
	switch webfinger.ErrorKind(err) {
	case webfinger.OutcomeTransport:
		slog.Info("discover: transport failure", "identifier", identifier, "error", err)
		handlers.WriteError(w, http.StatusBadGateway, "TransportError", err.Error())
	case webfinger.OutcomeDecode:
		slog.Info("discover: undecodable response", "identifier", identifier, "error", err)
		handlers.WriteError(w, http.StatusBadGateway, "DecodeError", err.Error())
	default:
		slog.Error("discover: unexpected error", "identifier", identifier, "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError",
			"An error occurred while discovering the actor")
	}
}
