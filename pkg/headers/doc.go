// Package headers implements the forward and response header policy (C6):
// which headers cross the proxy boundary, which are rewritten, and how
// authentication is translated between upstreams.
package headers
