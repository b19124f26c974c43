// Package logging provides the structured, request-correlated JSON-lines
// logger used throughout ccrelay, built on the standard library's log/slog.
// Every log line carries at least ts, level, and msg, with component,
// reqId, model, upstream, and request-outcome fields attached where
// applicable, per spec.md §6.
package logging
