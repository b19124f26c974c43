package proxy

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/shunirr/cc-glm/pkg/config"
)

// Server binds the configured listen address and dispatches every request
// to a Handler, per spec.md §4.8.
type Server struct {
	addr    string
	handler *Handler
	logger  *slog.Logger
	http    *http.Server
}

// NewServer builds a Server from the proxy's listen config and the request
// handler it will dispatch to.
func NewServer(proxyCfg config.ProxyConfig, handler *Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/", handler)

	return &Server{
		addr:    proxyCfg.Addr(),
		handler: handler,
		logger:  logger,
		http:    &http.Server{Addr: proxyCfg.Addr(), Handler: mux},
	}
}

// MountMetrics mounts the Prometheus scrape handler at path alongside the
// proxy's request handler.
func (s *Server) MountMetrics(path string, metricsHandler http.Handler) {
	mux, ok := s.http.Handler.(*http.ServeMux)
	if !ok {
		return
	}
	mux.Handle(path, metricsHandler)
}

// MountHealth mounts a liveness endpoint at path.
func (s *Server) MountHealth(path string) {
	mux, ok := s.http.Handler.(*http.ServeMux)
	if !ok {
		return
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
}

// ListenAndServe binds the listen address and serves until the server is
// shut down or a fatal listener error occurs. It logs the listen address,
// both upstream URLs, and the routing rule count with default, per
// spec.md §4.8's "listening" event.
func (s *Server) ListenAndServe(upstreamCfg config.UpstreamConfig, routingCfg config.RoutingConfig) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.logger.Info("proxy listening",
		"addr", s.addr,
		"upstreamAnthropic", upstreamCfg.Anthropic.URL,
		"upstreamZai", upstreamCfg.Zai.URL,
		"routingRules", len(routingCfg.Rules),
		"routingDefault", routingCfg.Default,
	)

	return s.http.Serve(listener)
}

// Shutdown gracefully stops the server, allowing in-flight requests to
// finish within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
