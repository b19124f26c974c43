package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shunirr/cc-glm/pkg/headers"
	"github.com/shunirr/cc-glm/pkg/routing"
	"github.com/shunirr/cc-glm/pkg/sigstore"
	"github.com/shunirr/cc-glm/pkg/telemetry/logging"
	"github.com/shunirr/cc-glm/pkg/telemetry/metrics"
	"github.com/shunirr/cc-glm/pkg/thinking"
)

const (
	// MaxRequestBodyBytes bounds how much of an inbound request this proxy
	// will buffer before giving up, per spec.md §4.7 step 3.
	MaxRequestBodyBytes = 10 * 1024 * 1024

	// MaxResponseBodyBytes bounds how much of an upstream response this
	// proxy will buffer when a transform or signature extraction requires
	// the full body, per spec.md §4.7 step 10.
	MaxResponseBodyBytes = 50 * 1024 * 1024

	// UpstreamTimeout covers both socket idle time and the full
	// request/response exchange with the chosen upstream.
	UpstreamTimeout = 30 * time.Second
)

// Handler implements the per-request pipeline described in spec.md §4.7: it
// is the http.Handler mounted by Server (C8).
type Handler struct {
	Selector  *routing.Selector
	SigStore  *sigstore.Store
	Collector *metrics.Collector
	Logger    *slog.Logger

	// Client dials every upstream. Its Timeout is left at zero; the
	// per-request deadline is applied via context so it can be logged as
	// a distinguishable gateway_timeout rather than a generic transport
	// error.
	Client *http.Client
}

// NewHandler builds a Handler with a freshly constructed upstream client.
func NewHandler(selector *routing.Selector, store *sigstore.Store, collector *metrics.Collector, logger *slog.Logger) *Handler {
	return &Handler{
		Selector:  selector,
		SigStore:  store,
		Collector: collector,
		Logger:    logger,
		Client:    &http.Client{},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := NewRequestID()
	ctx := logging.WithRequestLogger(r.Context(), h.Logger, reqID)
	logger := logging.FromContext(ctx)
	w.Header().Set("X-Request-Id", NewDiagnosticID())

	body, ok := h.readRequestBody(w, r)
	if !ok {
		return
	}

	model := extractModel(body)
	route := h.Selector.Select(model)

	bodyRewritten := false
	if route.Model != "" {
		if rewritten, changed := rewriteModel(body, route.Model); changed {
			body = rewritten
			bodyRewritten = true
		}
	}

	if route.IsAnthropic() && isJSONContentType(r.Header.Get("Content-Type")) {
		sanitized := thinking.SanitizeRequestForA(body, h.SigStore)
		if !bytes.Equal(sanitized, body) {
			body = sanitized
			bodyRewritten = true
		}
	}

	upstreamURL, err := buildUpstreamURL(route.URL, r.URL)
	if err != nil {
		logger.Error("failed to build upstream URL", "error", err, "upstream", route.Name)
		writeError(w, false, KindProxyError, err.Error())
		h.recordOutcome(route.Name, http.StatusBadGateway, start)
		return
	}

	forwardHeaders := headers.BuildForwardHeaders(r.Header, headers.ForwardOptions{
		ToZai:         route.IsZai(),
		APIKey:        route.APIKey,
		BodyRewritten: bodyRewritten,
		BodyLength:    len(body),
	})

	dialCtx, cancel := context.WithTimeout(ctx, UpstreamTimeout)
	defer cancel()

	upstreamReq, err := http.NewRequestWithContext(dialCtx, r.Method, upstreamURL, bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to construct upstream request", "error", err, "upstream", route.Name)
		writeError(w, false, KindProxyError, err.Error())
		h.recordOutcome(route.Name, http.StatusBadGateway, start)
		return
	}
	upstreamReq.Header = forwardHeaders

	resp, err := h.Client.Do(upstreamReq)
	if err != nil {
		status := http.StatusBadGateway
		kind := KindProxyError
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			kind = KindGatewayTimeout
		}
		logger.Warn("upstream dial failed", "error", err, "upstream", route.Name, "status", status)
		writeError(w, false, kind, err.Error())
		h.recordOutcome(route.Name, status, start)
		return
	}
	defer resp.Body.Close()

	status, bodyExcerpt := h.relayResponse(ctx, w, resp, route)
	h.recordOutcome(route.Name, status, start)

	level := slog.LevelInfo
	fields := []any{
		"upstream", route.Name,
		"model", model,
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"durationMs", time.Since(start).Milliseconds(),
	}
	if status >= 400 {
		level = slog.LevelWarn
		fields = append(fields, "bodyExcerpt", bodyExcerpt)
	}
	logger.Log(ctx, level, "request completed", fields...)
}

// readRequestBody buffers the inbound request body under MaxRequestBodyBytes
// when a body is expected, writing a 413 envelope and returning ok=false if
// the cap is exceeded.
func (h *Handler) readRequestBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if !expectsBody(r) {
		return nil, true
	}

	limited := io.LimitReader(r.Body, MaxRequestBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		writeError(w, false, KindProxyError, err.Error())
		return nil, false
	}
	if len(body) > MaxRequestBodyBytes {
		writeError(w, false, KindPayloadTooLarge, "request body exceeds 10MiB limit")
		return nil, false
	}
	return body, true
}

// relayResponse writes the upstream response to the client, buffering and
// transforming it when the route/content-type combination requires it (or
// when the status is an error worth excerpting for the completion log), and
// streaming it untouched otherwise. It returns the status code written and,
// for a >=400 status, a bodyExcerpt (at most 500 bytes) of the response body
// actually sent to the client, per spec.md §4.7 step 12; the excerpt is
// empty for a streamed 2xx/3xx response.
func (h *Handler) relayResponse(ctx context.Context, w http.ResponseWriter, resp *http.Response, route routing.Route) (int, string) {
	contentType := resp.Header.Get("Content-Type")
	needTransform := route.IsZai() && isJSONContentType(contentType)
	needSigExtract := route.IsAnthropic() && isJSONContentType(contentType)
	needBuffer := needTransform || needSigExtract || resp.StatusCode >= 400

	if !needBuffer {
		respHeaders := headers.BuildResponseHeaders(resp.Header, false, 0)
		copyHeaders(w.Header(), respHeaders)
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
		return resp.StatusCode, ""
	}

	limited := io.LimitReader(resp.Body, MaxResponseBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		writeError(w, false, KindProxyError, err.Error())
		return http.StatusBadGateway, ""
	}
	if len(body) > MaxResponseBodyBytes {
		writeError(w, false, KindProxyError, "upstream response exceeds 50MiB limit")
		return http.StatusBadGateway, ""
	}

	transformed := body
	if needSigExtract {
		transformed = thinking.ExtractAndRecordSignatures(body, h.SigStore)
		h.Collector.SetSignatureStoreSize(h.SigStore.Size())
	} else if needTransform {
		transformed = thinking.TransformThinkingBlocks(body)
	}

	respHeaders := headers.BuildResponseHeaders(resp.Header, true, len(transformed))
	copyHeaders(w.Header(), respHeaders)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(transformed)

	bodyExcerpt := ""
	if resp.StatusCode >= 400 {
		bodyExcerpt = logging.Excerpt(transformed)
	}
	return resp.StatusCode, bodyExcerpt
}

func (h *Handler) recordOutcome(upstream string, status int, start time.Time) {
	if h.Collector == nil {
		return
	}
	h.Collector.RecordRequest(upstream, statusClass(status), time.Since(start))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		dst[name] = values
	}
}

// expectsBody reports whether the request is expected to carry a body, per
// spec.md §4.7 step 2.
func expectsBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	if r.ContentLength > 0 {
		return true
	}
	return len(r.TransferEncoding) > 0
}

// extractModel best-effort parses a JSON object body for its "model" field,
// returning "" on any failure so that routing (§4.2) and the completion log
// line both treat a missing model the same way: matched against the empty
// pattern, per spec.md §4.7 step 4.
func extractModel(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var obj struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	return obj.Model
}

// rewriteModel overwrites the "model" field of a JSON object body, returning
// the re-serialized body and changed=true, or the input unchanged if the
// body does not parse as a JSON object.
func rewriteModel(body []byte, model string) ([]byte, bool) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return body, false
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return body, false
	}
	obj["model"] = model
	out, err := json.Marshal(obj)
	if err != nil {
		return body, false
	}
	return out, true
}

func isJSONContentType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.EqualFold(mediaType, "application/json")
}

// buildUpstreamURL concatenates the route's base path (trailing slash
// stripped) with the inbound request path (defaulting to "/"), preserving
// the query string, resolved against the route URL's origin.
func buildUpstreamURL(base string, inbound *url.URL) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	path := inbound.Path
	if path == "" {
		path = "/"
	}
	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/") + path
	baseURL.RawQuery = inbound.RawQuery
	return baseURL.String(), nil
}
