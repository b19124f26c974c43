// Command ccrelay is a loopback HTTP reverse proxy that fronts two
// Claude-wire-compatible upstreams and repairs the "thinking" content
// blocks that the non-reference upstream shapes differently.
//
// Usage:
//
//	# Run the proxy in the foreground, bound to the configured address
//	ccrelay run
//
//	# Start it detached, tracked by a PID file under the state directory
//	ccrelay start --config /path/to/config.yaml
//
//	# Stop a detached instance
//	ccrelay stop
//
//	# Report whether an instance is currently listening
//	ccrelay status
package main

func main() {
	Execute()
}
