// Package routing implements the ordered rule evaluation that picks which
// upstream (C2 in spec.md §4.2) serves a given request, given its model
// name.
//
// A Selector is built once from config.RoutingConfig and config.UpstreamConfig
// and compiles every rule's glob pattern up front (pkg/glob), so Select is a
// cheap per-request lookup: iterate compiled rules in order, return the
// first match, fall through to the configured default.
package routing
