package webfinger

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrPrivateAddress is returned when a discovery target resolves to a
// loopback, private or link-local address and private networks are not allowed.
var ErrPrivateAddress = errors.New("destination address is not publicly routable")

// maxRedirects caps how many redirects a discovery request may follow
const maxRedirects = 5

// isPrivateIP checks if an IP is loopback, private, link-local or unspecified
func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast()
}

// guardDial rejects connections to non-public addresses. It runs after DNS
// resolution, so it sees the address actually being dialled.
func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("invalid dial address %q: %w", address, err)
	}
	if isPrivateIP(net.ParseIP(host)) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}

// newHTTPClient builds the client used for a single discovery call. Unless
// allowPrivate is set (dev/testing only), it refuses to connect to
// non-public addresses so user-supplied identifiers cannot reach internal services.
// Proxy environment variables are ignored: the dial guard must see the
// authority's address, not a proxy's.
func newHTTPClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = guardDial
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConns:        1,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}
