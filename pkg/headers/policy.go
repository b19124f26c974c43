package headers

import (
	"net/http"
	"strconv"
	"strings"
)

// hopByHop is the closed set of headers that must never cross a proxy
// boundary, per RFC 7230 §6.1, plus the non-standard proxy-connection some
// clients still send.
var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
	"proxy-connection":    true,
}

// forwardingHeaders are stripped so the proxy does not leak the client's
// network identity or a spoofed chain of intermediaries to the upstream.
var forwardingHeaders = map[string]bool{
	"x-forwarded-for":   true,
	"x-forwarded-host":  true,
	"x-forwarded-proto": true,
	"x-forwarded-port":  true,
	"x-real-ip":         true,
	"forwarded":         true,
}

// ForwardOptions carries the per-request facts the forward header builder
// needs beyond the inbound header set itself.
type ForwardOptions struct {
	// ToZai selects the upstream-B auth rewrite.
	ToZai bool
	// APIKey is the configured upstream-B key, used only when ToZai is true.
	APIKey string
	// BodyRewritten indicates the outbound body differs from the inbound
	// body, forcing content-length recomputation.
	BodyRewritten bool
	// BodyLength is the outbound body's byte length, written as
	// Content-Length only when BodyRewritten is set; otherwise the inbound
	// Content-Length (or its absence) is forwarded as is.
	BodyLength int
}

// BuildForwardHeaders derives the header set sent to the upstream from the
// client's inbound request headers, per 4.6.
func BuildForwardHeaders(in http.Header, opts ForwardOptions) http.Header {
	connectionListed := connectionListedHeaders(in)

	out := make(http.Header, len(in))
	for name, values := range in {
		key := strings.ToLower(name)
		if hopByHop[key] || forwardingHeaders[key] || key == "host" {
			continue
		}
		if connectionListed[key] {
			continue
		}
		out[name] = append([]string(nil), values...)
	}

	out.Set("Accept-Encoding", "identity")

	if opts.BodyRewritten {
		out.Set("Content-Length", strconv.Itoa(opts.BodyLength))
	}

	if opts.ToZai {
		out.Del("Authorization")
		if opts.APIKey != "" {
			out.Set("X-Api-Key", opts.APIKey)
		}
	}

	return out
}

// BuildResponseHeaders derives the header set sent to the client from the
// upstream's response headers. When the proxy buffered and potentially
// rewrote the body (bodyRewritten), transfer-encoding and content-encoding
// are dropped and content-length is set to the final body length.
func BuildResponseHeaders(in http.Header, bodyRewritten bool, bodyLength int) http.Header {
	connectionListed := connectionListedHeaders(in)

	out := make(http.Header, len(in))
	for name, values := range in {
		key := strings.ToLower(name)
		if hopByHop[key] || connectionListed[key] {
			continue
		}
		out[name] = append([]string(nil), values...)
	}

	if bodyRewritten {
		out.Del("Transfer-Encoding")
		out.Del("Content-Encoding")
		out.Set("Content-Length", strconv.Itoa(bodyLength))
	}

	return out
}

// connectionListedHeaders parses the inbound Connection header's
// comma-separated value (it may appear as a single combined string or as
// multiple header lines) into a lowercased set of additional header names
// to drop.
func connectionListedHeaders(h http.Header) map[string]bool {
	listed := map[string]bool{}
	for _, line := range h.Values("Connection") {
		for _, name := range strings.Split(line, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				listed[name] = true
			}
		}
	}
	return listed
}
