// Package webfinger discovers remote ActivityPub actors using WebFinger
// (RFC 7033): an identifier is normalized into a resource and an authority,
// then the authority's /.well-known/webfinger endpoint is queried.
package webfinger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"Lamia/internal/version"
)

const (
	// WellKnownPath is the discovery endpoint on every authority
	WellKnownPath = "/.well-known/webfinger"

	// AcceptHeader is sent verbatim on every discovery request. The weights
	// are outside the 0-1 range of RFC 9110 but servers in the wild accept it.
	AcceptHeader = "q=2, application/jrd+json; q=1, application/json"

	// maxDocumentSize bounds how much of a response body is accepted
	maxDocumentSize = 1 << 20

	// MaxIdentifierLength is the longest identifier the HTTP surfaces accept
	MaxIdentifierLength = 512
)

// Discoverer looks up the discovery document for an actor identifier
type Discoverer interface {
	Discover(ctx context.Context, identifier string) (Document, error)
}

// Recorder receives the outcome of each discovery call
type Recorder interface {
	ObserveDiscovery(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDiscovery(string, time.Duration) {}

// Config holds configuration for the discovery client
type Config struct {
	// HTTPClient is used for every call when set and is owned by the caller.
	// When nil, each call gets its own client whose connections are closed
	// before Discover returns.
	HTTPClient *http.Client

	// UserAgent identifies this server to remote authorities
	UserAgent string

	// Timeout bounds a whole discovery call. Zero means no timeout.
	Timeout time.Duration

	// RateLimit paces outbound requests (requests per second) with room for
	// Burst requests at once. Zero means unlimited.
	RateLimit rate.Limit
	Burst     int

	// AllowPrivate permits connections to loopback and private networks.
	// Only honoured when HTTPClient is nil. For dev/testing only.
	AllowPrivate bool

	// Recorder observes call outcomes, e.g. for metrics
	Recorder Recorder
}

// DefaultConfig returns the default configuration:
// no timeout, no pacing and the build's User-Agent.
func DefaultConfig() Config {
	return Config{
		UserAgent: version.UserAgent(),
		RateLimit: rate.Inf,
		Burst:     1,
	}
}

// Client performs WebFinger discovery. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
	recorder   Recorder

	// newSession builds the client for one call when httpClient is nil
	newSession func() *http.Client
}

var _ Discoverer = (*Client)(nil)

// NewClient creates a discovery client, filling unset fields from DefaultConfig
func NewClient(config Config) *Client {
	defaults := DefaultConfig()
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.RateLimit == 0 {
		config.RateLimit = defaults.RateLimit
	}
	if config.Burst <= 0 {
		config.Burst = defaults.Burst
	}
	if config.Recorder == nil {
		config.Recorder = nopRecorder{}
	}

	allowPrivate := config.AllowPrivate
	return &Client{
		httpClient: config.HTTPClient,
		userAgent:  config.UserAgent,
		timeout:    config.Timeout,
		limiter:    rate.NewLimiter(config.RateLimit, config.Burst),
		recorder:   config.Recorder,
		newSession: func() *http.Client { return newHTTPClient(allowPrivate) },
	}
}

// Discover normalizes identifier, queries the authority's WebFinger endpoint
// and returns the decoded JSON document. The response status is not checked:
// any body of at most 1 MiB that decodes as a JSON object is returned.
//
// Errors are *TransportError when the exchange could not complete and
// *DecodeError when the body is not JSON. Nothing is retried.
func (c *Client) Discover(ctx context.Context, identifier string) (doc Document, err error) {
	start := time.Now()
	ref := Normalize(identifier, false)
	target := ref.URL()

	defer func() {
		c.recorder.ObserveDiscovery(ErrorKind(err), time.Since(start))
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Identifier: identifier, URL: target, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Identifier: identifier, URL: target, Err: err}
	}
	req.URL.RawQuery = url.Values{"resource": {ref.Resource}}.Encode()
	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	httpClient, release := c.session()
	defer release()

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Warn("webfinger request failed",
			"identifier", identifier, "url", target, "error", err)
		return nil, &TransportError{Identifier: identifier, URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, &TransportError{Identifier: identifier, URL: target, Err: err}
	}

	decodeErr := func(err error) *DecodeError {
		slog.Warn("webfinger response is not a JSON object",
			"identifier", identifier, "url", target, "status", resp.StatusCode, "error", err)
		return &DecodeError{
			Identifier: identifier,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
			Err:        err,
		}
	}

	if len(body) > maxDocumentSize {
		return nil, decodeErr(ErrDocumentTooLarge)
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, decodeErr(err)
	}
	// "null" decodes into a nil map without error
	if doc == nil {
		return nil, decodeErr(ErrNotObject)
	}

	slog.Debug("webfinger lookup complete",
		"identifier", identifier, "resource", ref.Resource, "authority", ref.Authority,
		"status", resp.StatusCode, "duration", time.Since(start))

	return doc, nil
}

// session returns the HTTP client for one call and a func releasing it
func (c *Client) session() (*http.Client, func()) {
	if c.httpClient != nil {
		return c.httpClient, func() {}
	}
	hc := c.newSession()
	return hc, hc.CloseIdleConnections
}
