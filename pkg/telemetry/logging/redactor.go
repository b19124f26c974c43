package logging

import (
	"context"
	"log/slog"
	"strings"
)

const redacted = "[redacted]"

// sensitiveKeys are attribute names whose values must never reach the log
// sink verbatim, matched case-insensitively.
var sensitiveKeys = map[string]bool{
	"apikey":        true,
	"api_key":       true,
	"authorization": true,
	"x-api-key":     true,
}

// RedactingHandler wraps an slog.Handler and replaces the value of any
// attribute whose key matches a known secret-carrying field, recursively
// through groups, before the record reaches the wrapped handler.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next with secret redaction.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	redactedRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		redactedRecord.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, redactedRecord)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redactedAttrs)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		redactedGroup := make([]slog.Attr, len(group))
		for i, member := range group {
			redactedGroup[i] = redactAttr(member)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactedGroup...)}
	}
	return a
}

// RedactHeaders returns a copy of header values suitable for logging, with
// sensitive header values replaced. Intended for call sites that want to
// log an entire header set (e.g. debug-level request tracing).
func RedactHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if sensitiveKeys[strings.ToLower(name)] {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}
