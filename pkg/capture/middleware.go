package capture

import (
	"log/slog"
	"net/http"
)

// Recorder is the sink the middleware hands requests to. The log-store
// engine satisfies it.
type Recorder interface {
	Capture(r *http.Request) error
}

// Middleware snapshots every inbound request into rec before delegating to
// the wrapped handler. Capture failures are logged and do not block the
// request.
func Middleware(rec Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rec.Capture(r); err != nil {
				logger.Error("request capture failed", "method", r.Method, "path", r.URL.Path, "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}
