package routing

// Route is the per-request decision produced by Select: which upstream to
// dial, with what credentials, and under what (possibly rewritten) model
// name. It is stack-scoped to a single request — never retained across
// requests or shared between goroutines.
type Route struct {
	// Name is "anthropic" or "zai".
	Name string

	// URL is the chosen upstream's base URL.
	URL string

	// APIKey is only set when Name == "zai" and a key is configured.
	APIKey string

	// Model is the outbound rewrite for the request body's "model" field,
	// or "" if no rewrite applies.
	Model string
}

// IsAnthropic reports whether this route targets upstream A.
func (r Route) IsAnthropic() bool {
	return r.Name == NameAnthropic
}

// IsZai reports whether this route targets upstream B.
func (r Route) IsZai() bool {
	return r.Name == NameZai
}

// Upstream names recognized by the router. These mirror
// config.UpstreamAnthropic/config.UpstreamZai and hold the same values.
const (
	NameAnthropic = "anthropic"
	NameZai       = "zai"
)
