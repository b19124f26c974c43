// Package metrics exposes the proxy's Prometheus metrics: request counts
// and durations by upstream and status, and the signature store's
// occupancy, mounted at the configured path by C8.
package metrics
