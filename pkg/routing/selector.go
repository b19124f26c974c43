package routing

import (
	"log/slog"
	"sync"

	"github.com/shunirr/cc-glm/pkg/config"
	"github.com/shunirr/cc-glm/pkg/glob"
)

// compiledRule is a routing rule with its glob pattern pre-compiled.
type compiledRule struct {
	matcher  *glob.Matcher
	upstream string
	model    string
}

// Selector evaluates the ordered rule set from config.RoutingConfig against
// a model name and resolves to a Route, per spec.md §4.2. It is safe for
// concurrent use: Select is called from every in-flight request's handler
// goroutine while Reload may be swapping the rule set out from under it
// after a hot-reloaded config file.
type Selector struct {
	mu        sync.RWMutex
	rules     []compiledRule
	defaultUp string
	anthropic config.AnthropicUpstream
	zai       config.ZaiUpstream
}

// NewSelector compiles routing and upstream configuration into a Selector.
// Rules naming an unrecognized upstream are logged and dropped at
// construction time rather than on every Select call — evaluation order
// among the remaining rules is unaffected, matching spec.md's "invalid
// name is logged and skipped" for C2.
func NewSelector(routing config.RoutingConfig, upstream config.UpstreamConfig) *Selector {
	s := &Selector{}
	s.Reload(routing, upstream)
	return s
}

// Reload recompiles the selector's rule set in place from freshly loaded
// configuration, atomically with respect to concurrent Select calls. It is
// the hook config.Watcher's OnReload drives for a routing-table hot-reload.
func (s *Selector) Reload(routing config.RoutingConfig, upstream config.UpstreamConfig) {
	defaultUp := routing.Default
	if !isValidUpstreamName(defaultUp) {
		slog.Warn("routing default names an unknown upstream, falling back to anthropic",
			"default", defaultUp)
		defaultUp = ""
	}

	var rules []compiledRule
	for _, rule := range routing.Rules {
		if !isValidUpstreamName(rule.Upstream) {
			slog.Warn("routing rule names an unknown upstream, skipping",
				"match", rule.Match, "upstream", rule.Upstream)
			continue
		}
		rules = append(rules, compiledRule{
			matcher:  glob.Compile(rule.Match),
			upstream: rule.Upstream,
			model:    rule.Model,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
	s.defaultUp = defaultUp
	s.anthropic = upstream.Anthropic
	s.zai = upstream.Zai
}

// Select resolves model (which may be empty, meaning the request body had
// no "model" field) to a Route. The first matching rule wins; with no
// match, the configured default upstream is used with no model rewrite.
func (s *Selector) Select(model string) Route {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.matcher.Matches(model) {
			return s.populate(rule.upstream, rule.model)
		}
	}
	return s.populate(s.defaultUp, "")
}

// populate fills in a Route's URL/APIKey from the selector's upstream
// configuration for the given upstream name. An empty or unrecognized name
// (the invalid-default case) falls back to upstream A with no API key.
func (s *Selector) populate(upstream, model string) Route {
	switch upstream {
	case NameZai:
		return Route{
			Name:   NameZai,
			URL:    s.zai.URL,
			APIKey: s.zai.APIKey,
			Model:  model,
		}
	case NameAnthropic:
		return Route{
			Name:  NameAnthropic,
			URL:   s.anthropic.URL,
			Model: model,
		}
	default:
		return Route{
			Name: NameAnthropic,
			URL:  s.anthropic.URL,
		}
	}
}

func isValidUpstreamName(name string) bool {
	return name == NameAnthropic || name == NameZai
}
