// Package lifecycle implements the singleton controller (C9) and process
// tracker (C10) that let the wrapper CLI run "start" and "stop" against a
// shared state directory without racing a second invocation: an
// atomic-mkdir lock with stale-lock recovery, a PID file, port-ownership
// verification, and a detached child spawn.
package lifecycle
