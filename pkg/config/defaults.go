package config

// Default values for configuration fields, applied by ApplyDefaults.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8787

	DefaultRoutingDefault = UpstreamAnthropic

	DefaultStopGraceSeconds = 8
	DefaultStartWaitSeconds = 8
	DefaultStateDir         = ".ccrelay"

	DefaultSignatureMaxSize = 1000

	DefaultLoggingLevel = "info"

	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// ApplyDefaults fills in zero-valued fields with their defaults. It does not
// overwrite a value the user (or the YAML file) already set, with two
// exceptions: a negative signature_store.maxSize is replaced by the default,
// and metrics.enabled: false is turned on when metrics.path is unset or
// equal to the default path.
func ApplyDefaults(cfg *Config) {
	if cfg.Proxy.Host == "" {
		cfg.Proxy.Host = DefaultHost
	}
	if cfg.Proxy.Port == 0 {
		cfg.Proxy.Port = DefaultPort
	}

	if cfg.Routing.Default == "" {
		cfg.Routing.Default = DefaultRoutingDefault
	}

	if cfg.Lifecycle.StopGraceSeconds == 0 {
		cfg.Lifecycle.StopGraceSeconds = DefaultStopGraceSeconds
	}
	if cfg.Lifecycle.StartWaitSeconds == 0 {
		cfg.Lifecycle.StartWaitSeconds = DefaultStartWaitSeconds
	}
	if cfg.Lifecycle.StateDir == "" {
		cfg.Lifecycle.StateDir = DefaultStateDir
	}

	if cfg.Signature.MaxSize <= 0 {
		cfg.Signature.MaxSize = DefaultSignatureMaxSize
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if !cfg.Metrics.Enabled && cfg.Metrics.Path == DefaultMetricsPath {
		// An explicit enabled: false can't be told apart from the zero
		// value here, so with the default path metrics are always enabled,
		// matching the teacher's CORS-enabled-by-default rule; only a
		// non-default path leaves enabled: false in effect.
		cfg.Metrics.Enabled = DefaultMetricsEnabled
	}
}
