// Package route turns "<origin> to <destination>" queries into Google Maps
// directions links.
package route

import (
	"net/url"
	"strings"
)

const (
	// Separator splits the origin from the destination. Only the first
	// occurrence is significant.
	Separator = " to "

	// DirectionsBaseURL is the Maps URLs directions endpoint.
	DirectionsBaseURL = "https://www.google.com/maps/dir/?api=1"
)

// Request is a parsed origin/destination pair. Both fields are non-empty.
type Request struct {
	Origin      string
	Destination string
}

// Parse extracts a Request from query. It reports false when the query has no
// separator or when either side is blank after trimming.
func Parse(query string) (Request, bool) {
	origin, destination, found := strings.Cut(query, Separator)
	if !found {
		return Request{}, false
	}

	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return Request{}, false
	}

	return Request{Origin: origin, Destination: destination}, true
}

// URL returns the directions link for the request.
func (r Request) URL() string {
	return DirectionsURL(r.Origin, r.Destination)
}

// Reverse returns the request travelling the other way.
func (r Request) Reverse() Request {
	return Request{Origin: r.Destination, Destination: r.Origin}
}

// DirectionsURL builds the Maps directions link from origin to destination.
// Parameter order is fixed: api, origin, destination.
func DirectionsURL(origin, destination string) string {
	var b strings.Builder
	b.WriteString(DirectionsBaseURL)
	b.WriteString("&origin=")
	b.WriteString(escape(origin))
	b.WriteString("&destination=")
	b.WriteString(escape(destination))
	return b.String()
}

// escape percent-encodes s as a query component, with spaces as %20 rather
// than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
