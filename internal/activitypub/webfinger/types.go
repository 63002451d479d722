package webfinger

import "encoding/json"

// Reference is the result of normalizing an actor identifier
type Reference struct {
	Resource  string // Value of the "resource" query parameter
	Authority string // https://host[:port] to send the query to
}

// URL returns the discovery endpoint for the reference's authority
func (r Reference) URL() string {
	return r.Authority + WellKnownPath
}

// Document is a decoded discovery response (a JSON Resource Descriptor).
// It is kept as an untyped object; the accessors below read the common
// RFC 7033 members without validating the rest.
type Document map[string]any

// Link is a single entry of a JRD "links" array.
//
// See https://datatracker.ietf.org/doc/html/rfc7033#section-4.4.4
type Link struct {
	Rel        string            `json:"rel,omitempty"`
	Type       string            `json:"type,omitempty"`
	Href       string            `json:"href,omitempty"`
	Titles     map[string]string `json:"titles,omitempty"`
	Properties map[string]any    `json:"properties,omitempty"`
}

// ActivityPub media types accepted for an actor's self link
const (
	activityJSONType = "application/activity+json"
	ldJSONType       = `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`
)

// Subject returns the "subject" member, or "" when absent
func (d Document) Subject() string {
	s, _ := d["subject"].(string)
	return s
}

// Aliases returns the string entries of the "aliases" member
func (d Document) Aliases() []string {
	raw, ok := d["aliases"].([]any)
	if !ok {
		return nil
	}

	aliases := make([]string, 0, len(raw))
	for _, a := range raw {
		if s, ok := a.(string); ok {
			aliases = append(aliases, s)
		}
	}
	return aliases
}

// Links returns the "links" member as typed values.
// Entries that are not JSON objects are skipped.
func (d Document) Links() []Link {
	raw, ok := d["links"].([]any)
	if !ok {
		return nil
	}

	links := make([]Link, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		// Round-trip through JSON so titles/properties get their declared types
		data, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		var link Link
		if err := json.Unmarshal(data, &link); err != nil {
			continue
		}
		links = append(links, link)
	}
	return links
}

// ActorURL returns the href of the first "self" link that carries an
// ActivityPub media type, or "" if the document has none.
func (d Document) ActorURL() string {
	for _, link := range d.Links() {
		if link.Rel != "self" {
			continue
		}
		if link.Type == activityJSONType || link.Type == ldJSONType {
			return link.Href
		}
	}
	return ""
}
