package routing

import (
	"testing"

	"github.com/shunirr/cc-glm/pkg/config"
)

func testUpstream() config.UpstreamConfig {
	return config.UpstreamConfig{
		Anthropic: config.AnthropicUpstream{URL: "https://api.anthropic.com"},
		Zai:       config.ZaiUpstream{URL: "https://api.z.ai/api/anthropic", APIKey: "zai-key"},
	}
}

func TestSelectFirstMatchingRuleWins(t *testing.T) {
	routing := config.RoutingConfig{
		Rules: []config.RuleConfig{
			{Match: "claude-sonnet-*", Upstream: "zai", Model: "glm-4-plus"},
			{Match: "claude-*", Upstream: "zai", Model: "glm-4-6"},
		},
		Default: "anthropic",
	}
	s := NewSelector(routing, testUpstream())

	route := s.Select("claude-sonnet-4-5")
	if route.Name != NameZai || route.Model != "glm-4-plus" {
		t.Errorf("Select() = %+v, want zai/glm-4-plus (first matching rule)", route)
	}
}

func TestSelectFallsThroughToDefault(t *testing.T) {
	routing := config.RoutingConfig{
		Rules:   []config.RuleConfig{{Match: "claude-opus-*", Upstream: "zai"}},
		Default: "anthropic",
	}
	s := NewSelector(routing, testUpstream())

	route := s.Select("gpt-4")
	if route.Name != NameAnthropic || route.Model != "" {
		t.Errorf("Select() = %+v, want anthropic with no model rewrite", route)
	}
	if route.URL != "https://api.anthropic.com" {
		t.Errorf("Select().URL = %q", route.URL)
	}
}

func TestSelectEmptyModelMatchesAgainstEmptyString(t *testing.T) {
	routing := config.RoutingConfig{
		Rules:   []config.RuleConfig{{Match: "", Upstream: "zai"}},
		Default: "anthropic",
	}
	s := NewSelector(routing, testUpstream())

	route := s.Select("")
	if route.Name != NameZai {
		t.Errorf("Select(\"\") = %+v, want zai (empty pattern matches empty model)", route)
	}
}

func TestSelectZaiPopulatesAPIKey(t *testing.T) {
	routing := config.RoutingConfig{Default: "zai"}
	s := NewSelector(routing, testUpstream())

	route := s.Select("anything")
	if route.APIKey != "zai-key" {
		t.Errorf("Select().APIKey = %q, want zai-key", route.APIKey)
	}
}

func TestSelectAnthropicNeverPopulatesAPIKey(t *testing.T) {
	routing := config.RoutingConfig{Default: "anthropic"}
	s := NewSelector(routing, testUpstream())

	route := s.Select("anything")
	if route.APIKey != "" {
		t.Errorf("Select().APIKey = %q, want empty for upstream A", route.APIKey)
	}
}

func TestSelectSkipsRuleWithInvalidUpstream(t *testing.T) {
	routing := config.RoutingConfig{
		Rules: []config.RuleConfig{
			{Match: "claude-*", Upstream: "bogus"},
			{Match: "claude-*", Upstream: "zai"},
		},
		Default: "anthropic",
	}
	s := NewSelector(routing, testUpstream())

	route := s.Select("claude-sonnet-4")
	if route.Name != NameZai {
		t.Errorf("Select() = %+v, want zai (invalid rule should be skipped, not matched)", route)
	}
}

func TestSelectInvalidDefaultFallsBackToAnthropic(t *testing.T) {
	routing := config.RoutingConfig{Default: "not-a-real-upstream"}
	s := NewSelector(routing, testUpstream())

	route := s.Select("anything")
	if route.Name != NameAnthropic {
		t.Errorf("Select() = %+v, want anthropic fallback for invalid default", route)
	}
	if route.APIKey != "" {
		t.Errorf("Select().APIKey = %q, want empty", route.APIKey)
	}
}

func TestReloadReplacesRuleSetAtomically(t *testing.T) {
	s := NewSelector(config.RoutingConfig{Default: "anthropic"}, testUpstream())

	if route := s.Select("claude-opus-4"); route.Name != NameAnthropic {
		t.Fatalf("Select() before reload = %+v, want anthropic", route)
	}

	s.Reload(config.RoutingConfig{
		Rules:   []config.RuleConfig{{Match: "claude-*", Upstream: "zai"}},
		Default: "anthropic",
	}, testUpstream())

	if route := s.Select("claude-opus-4"); route.Name != NameZai {
		t.Errorf("Select() after reload = %+v, want zai", route)
	}
}

func TestSelectMissingAPIKeyIsNotAnError(t *testing.T) {
	routing := config.RoutingConfig{Default: "zai"}
	upstream := config.UpstreamConfig{Zai: config.ZaiUpstream{URL: "https://api.z.ai/api/anthropic"}}
	s := NewSelector(routing, upstream)

	route := s.Select("anything")
	if route.Name != NameZai || route.APIKey != "" {
		t.Errorf("Select() = %+v, want zai with empty API key", route)
	}
}
