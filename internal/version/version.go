// Package version holds the build version of the Lamia server.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X Lamia/internal/version.Version=1.2.3" ./cmd/server
var Version = "0.1.0-dev"

// Product is the name sent in outbound User-Agent headers
const Product = "Lamia"

// UserAgent returns the default outbound User-Agent, e.g. "Lamia/0.1.0-dev"
func UserAgent() string {
	return Product + "/" + Version
}
