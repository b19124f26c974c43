package config

import (
	"strconv"
	"time"
)

// Config is the root configuration for ccrelay.
type Config struct {
	Proxy     ProxyConfig     `yaml:"proxy"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Routing   RoutingConfig   `yaml:"routing"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Signature SignatureConfig `yaml:"signature_store"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ProxyConfig is the listen address of the data-plane HTTP server.
type ProxyConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the "host:port" listen address.
func (p ProxyConfig) Addr() string {
	return addrJoin(p.Host, p.Port)
}

// UpstreamConfig holds the two upstream backends the proxy can route to.
type UpstreamConfig struct {
	Anthropic AnthropicUpstream `yaml:"anthropic"`
	Zai       ZaiUpstream       `yaml:"zai"`
}

// AnthropicUpstream is upstream A: the reference, signature-issuing API.
type AnthropicUpstream struct {
	URL string `yaml:"url"`
}

// ZaiUpstream is upstream B: the GLM-family, Anthropic-wire-compatible API.
type ZaiUpstream struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// RoutingConfig is the ordered rule set used to pick an upstream per request.
type RoutingConfig struct {
	Rules   []RuleConfig `yaml:"rules"`
	Default string       `yaml:"default"`
}

// RuleConfig is a single routing rule.
type RuleConfig struct {
	Match    string `yaml:"match"`
	Upstream string `yaml:"upstream"`
	Model    string `yaml:"model,omitempty"`
}

// LifecycleConfig tunes the singleton controller.
type LifecycleConfig struct {
	StopGraceSeconds  int    `yaml:"stopGraceSeconds"`
	StartWaitSeconds  int    `yaml:"startWaitSeconds"`
	StateDir          string `yaml:"stateDir"`
}

// SignatureConfig tunes the signature-store LRU.
type SignatureConfig struct {
	MaxSize int `yaml:"maxSize"`
}

// LoggingConfig controls log verbosity and sink.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// MetricsConfig controls the ambient Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// UpstreamAnthropic and UpstreamZai are the only legal upstream names.
const (
	UpstreamAnthropic = "anthropic"
	UpstreamZai       = "zai"
)

func addrJoin(host string, port int) string {
	if host == "" {
		host = "127.0.0.1"
	}
	return host + ":" + strconv.Itoa(port)
}

// StartWait returns StartWaitSeconds as a time.Duration.
func (l LifecycleConfig) StartWait() time.Duration {
	return time.Duration(l.StartWaitSeconds) * time.Second
}

// StopGrace returns StopGraceSeconds as a time.Duration.
func (l LifecycleConfig) StopGrace() time.Duration {
	return time.Duration(l.StopGraceSeconds) * time.Second
}
