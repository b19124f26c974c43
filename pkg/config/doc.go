// Package config provides configuration management for ccrelay.
//
// Configuration is loaded from a YAML file, defaulted, overridden by
// CCRELAY_* environment variables, and validated before use. The resulting
// Config is immutable after load and passed by reference to every
// component that needs it.
//
// # Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Singleton
//
// For the CLI entry points that need process-wide access:
//
//	if err := config.Initialize(path); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// For testing, prefer passing an explicit *Config rather than the
// singleton.
//
// # Hot reload
//
// NewWatcher follows the config file for changes and hands each reloaded
// Config to its OnReload callback; "ccrelay run" applies the routing rules,
// routing default and upstreams from it, and does not apply a changed log
// level. Changes to fields that require a process restart (listen address,
// state directory) are reported as ErrRestartRequired instead.
package config
