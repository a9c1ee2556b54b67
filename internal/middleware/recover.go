package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a panic into a logged error and a fallback page, so a
// failing handler never leaves the browser with a blank screen.
type Recoverer struct {
	logger   *slog.Logger
	fallback http.Handler
}

// NewRecoverer creates a Recoverer. fallback renders the error page; nil
// falls back to a plain 500.
func NewRecoverer(logger *slog.Logger, fallback http.Handler) *Recoverer {
	return &Recoverer{logger: logger, fallback: fallback}
}

// Handler returns middleware that recovers from panics.
func (m *Recoverer) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			m.logger.Error("panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", GetRequestID(r.Context()),
				"stack", string(debug.Stack()),
			)

			if m.fallback != nil {
				m.fallback.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
