package csrf

import (
	"log/slog"
	"net/http"

	"github.com/distribuia/distribuia/core"
	"github.com/distribuia/distribuia/pkg/requestid"
)

// Middleware rejects unsafe requests that fail the custom-header check with
// 403 and the CSRF_VALIDATION_FAILED error body.
func Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Check(r.Method, r.Header); err != nil {
				log.WarnContext(r.Context(), "csrf validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					requestid.Attr(r.Context()),
				)
				core.Error(w, core.ErrCSRFValidationFailed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
