package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"storm/internal/httputil"
)

// Recovery turns a panicking handler into a 500 problem response. The
// store's mutex is released by its own defers, so the process keeps serving.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"user_id", httputil.GetUserID(r),
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
