package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/response"
)

// Recovery converts handler panics into 500 responses. Generation job
// panics are handled separately by the job manager; this only covers the
// synchronous request path.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
