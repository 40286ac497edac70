package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/entitlements"
)

// ErrNoSession is returned by validators when the request carries no valid
// session.
var ErrNoSession = errors.New("auth: no valid session")

// User is the authenticated principal attached to a request.
type User struct {
	ID    uuid.UUID
	Email string
	Plan  entitlements.Tier
}

// Validator resolves the session carried by a request. Implementations talk
// to the external auth provider (session cookie, bearer token).
type Validator interface {
	Validate(r *http.Request) (User, error)
}

type userContextKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey{}).(User)
	return user, ok
}

// UserIDFromContext returns the user id as a string, or "" when the request
// is anonymous. Used for rate limit identifier selection.
func UserIDFromContext(ctx context.Context) string {
	user, ok := UserFromContext(ctx)
	if !ok {
		return ""
	}
	return user.ID.String()
}
