// Package proxy implements the request handler (C7) and server (C8): the
// per-request pipeline that buffers an inbound request, selects an upstream
// via pkg/routing, sanitizes or rewrites the body via pkg/thinking, builds
// headers via pkg/headers, dials the chosen upstream, and relays the
// response back to the client — buffered when a body transform is needed,
// streamed untouched otherwise.
package proxy
