package proxy

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// seq disambiguates request ids minted within the same nanosecond tick —
// the unlikely but possible case of two requests landing in the same
// time.Now() sample under high concurrency.
var seq uint64

// NewRequestID mints a short, monotonically-derived, base-36 request id,
// per spec.md §4.7. It carries no semantic meaning beyond uniqueness and
// rough ordering; it is the id every log line for a request carries.
func NewRequestID() string {
	n := atomic.AddUint64(&seq, 1)
	ts := strconv.FormatInt(time.Now().UnixNano(), 36)
	return ts + strconv.FormatUint(n, 36)
}

// NewDiagnosticID mints a globally-unique id for the X-Request-Id response
// header, independent of NewRequestID's log-correlation id. Exposing a UUID
// externally (rather than the internal sortable id) avoids leaking the
// process's request-ordering counter to clients.
func NewDiagnosticID() string {
	return uuid.New().String()
}
