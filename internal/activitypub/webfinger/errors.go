package webfinger

import (
	"errors"
	"fmt"
)

// maxErrorBody bounds how much of an undecodable body is kept for diagnostics
const maxErrorBody = 1024

var (
	// ErrDocumentTooLarge is wrapped in a DecodeError when the body exceeds the read limit
	ErrDocumentTooLarge = fmt.Errorf("document exceeds %d bytes", maxDocumentSize)

	// ErrNotObject is wrapped in a DecodeError when the body is valid JSON but not an object
	ErrNotObject = errors.New("document is not a JSON object")
)

// TransportError is returned when the discovery exchange could not complete
// (DNS failure, refused connection, TLS failure, timeout or cancellation).
type TransportError struct {
	Identifier string
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webfinger request for %s to %s failed: %v", e.Identifier, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when the authority answered but the body is not a
// JSON object. Body holds at most the first KiB of the response.
type DecodeError struct {
	Identifier string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("webfinger response for %s from %s (status %d) is not a JSON object: %v",
		e.Identifier, e.URL, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a *TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Outcome labels shared by ErrorKind and metrics
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport"
	OutcomeDecode    = "decode"
	OutcomeOther     = "other"
)

// ErrorKind classifies a Discover error. A nil error is a success.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsTransportError(err):
		return OutcomeTransport
	case IsDecodeError(err):
		return OutcomeDecode
	default:
		return OutcomeOther
	}
}

func truncateBody(body []byte) []byte {
	if len(body) > maxErrorBody {
		return body[:maxErrorBody]
	}
	return body
}
