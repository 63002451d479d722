package webfinger

import (
	"net/url"
	"regexp"
	"strings"
)

// acctScheme is the URI scheme used for account handles (RFC 7565)
const acctScheme = "acct:"

// portPattern matches a colon followed by a run of digits anywhere in an identifier
var portPattern = regexp.MustCompile(`:\d+`)

// Normalize maps a raw actor identifier to the resource to query and the
// authority to query it against. It is a heuristic approximation of
// https://openid.net/specs/openid-connect-discovery-1_0.html#NormalizationSteps
// and never fails: malformed input yields a best-effort Reference.
//
// Supported shapes:
//   - acct:alice@example.com or acct:example.com/@alice
//   - https://example.com/users/alice (the scheme is dropped from the resource)
//   - alice@example.com
//   - example.com/@alice or example.com
//
// Unless allowPort is set, any ":<digits>" run is removed before the
// identifier is inspected. The authority always uses https.
func Normalize(identifier string, allowPort bool) Reference {
	id := strings.TrimPrefix(identifier, acctScheme)

	// Only colons outside a "://" separator trigger stripping, but the
	// substitution itself runs over the whole identifier.
	if !allowPort && strings.Contains(strings.ReplaceAll(id, "://", ""), ":") {
		id = portPattern.ReplaceAllString(id, "")
	}

	// Full address, e.g. http://example.com/users/alice
	if strings.HasPrefix(id, "http") {
		resource := strings.Replace(id, "https://", "", 1)
		resource = strings.Replace(resource, "http://", "", 1)
		return Reference{
			Resource:  resource,
			Authority: "https://" + hostOf(id),
		}
	}

	// Email-style handle, e.g. alice@example.com
	if strings.Contains(id, "@") && !strings.Contains(id, "/@") {
		parts := strings.SplitN(id, "@", 3)
		return Reference{
			Resource:  id,
			Authority: "https://" + parts[1],
		}
	}

	// Anything else is treated as a host and path without a scheme
	return Reference{
		Resource:  id,
		Authority: "https://" + hostOf("https://"+id),
	}
}

// hostOf returns the host[:port] portion of rawURL. When the URL does not
// parse, the host is cut textually from between "//" and the first path,
// query or fragment delimiter.
func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Host
	}

	_, rest, found := strings.Cut(rawURL, "//")
	if !found {
		return ""
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
