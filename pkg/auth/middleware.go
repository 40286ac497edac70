package auth

import (
	"net/http"

	"github.com/distribuia/distribuia/core"
)

// Middleware resolves the session and stores the user in the context.
// Requests without a valid session are rejected with 401 UNAUTHENTICATED.
func Middleware(validator Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := validator.Validate(r)
			if err != nil {
				core.Error(w, core.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
