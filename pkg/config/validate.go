package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError is a validation error for a single configuration field.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found while validating a Config.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", fe.Error()))
	}
	return sb.String()
}

var validUpstreamNames = map[string]bool{
	UpstreamAnthropic: true,
	UpstreamZai:       true,
}

// Validate checks cfg against the invariants in spec.md §3 and returns a
// ValidationError aggregating every violation found, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateRouting(&cfg.Routing)...)
	errs = append(errs, validateLifecycle(&cfg.Lifecycle)...)
	errs = append(errs, validateSignature(&cfg.Signature)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateProxy(p *ProxyConfig) []FieldError {
	var errs []FieldError
	if p.Port < 1 || p.Port > 65535 {
		errs = append(errs, FieldError{"proxy.port", "must be between 1 and 65535"})
	}
	return errs
}

func validateUpstream(u *UpstreamConfig) []FieldError {
	var errs []FieldError
	if u.Anthropic.URL != "" {
		if _, err := url.Parse(u.Anthropic.URL); err != nil {
			errs = append(errs, FieldError{"upstream.anthropic.url", "must be a valid URL"})
		}
	}
	if u.Zai.URL != "" {
		if _, err := url.Parse(u.Zai.URL); err != nil {
			errs = append(errs, FieldError{"upstream.zai.url", "must be a valid URL"})
		}
	}
	return errs
}

func validateRouting(r *RoutingConfig) []FieldError {
	var errs []FieldError
	if r.Default != "" && !validUpstreamNames[r.Default] {
		errs = append(errs, FieldError{"routing.default", fmt.Sprintf("must be one of %q, %q", UpstreamAnthropic, UpstreamZai)})
	}
	// Invalid per-rule upstream names are not validation failures: C2
	// logs and skips them at match time (spec.md §4.2), so config loading
	// must not reject a file that merely contains a typo'd rule.
	return errs
}

func validateLifecycle(l *LifecycleConfig) []FieldError {
	var errs []FieldError
	if l.StopGraceSeconds < 0 || l.StopGraceSeconds > 300 {
		errs = append(errs, FieldError{"lifecycle.stopGraceSeconds", "must be between 0 and 300"})
	}
	if l.StartWaitSeconds < 1 || l.StartWaitSeconds > 60 {
		errs = append(errs, FieldError{"lifecycle.startWaitSeconds", "must be between 1 and 60"})
	}
	if l.StateDir == "" {
		errs = append(errs, FieldError{"lifecycle.stateDir", "is required"})
	}
	return errs
}

func validateSignature(s *SignatureConfig) []FieldError {
	var errs []FieldError
	if s.MaxSize < 1 || s.MaxSize > 100000 {
		errs = append(errs, FieldError{"signature_store.maxSize", "must be between 1 and 100000"})
	}
	return errs
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

func validateLogging(l *LoggingConfig) []FieldError {
	var errs []FieldError
	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, FieldError{"logging.level", "must be one of debug, info, warn, error"})
	}
	return errs
}
