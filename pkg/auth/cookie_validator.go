package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/entitlements"
	"github.com/distribuia/distribuia/pkg/timingsafe"
)

// Config holds the session cookie settings.
type Config struct {
	Secret     string `env:"SESSION_SECRET,required"`
	CookieName string `env:"SESSION_COOKIE" envDefault:"distribuia_session"`
}

// CookieValidator verifies the HMAC-signed session cookie issued by the auth
// frontend. The cookie value is "<userID>|<plan>|<email>|<signature>",
// signed over the first three fields.
type CookieValidator struct {
	secret []byte
	name   string
}

// NewCookieValidator creates a validator from config.
func NewCookieValidator(cfg Config) (*CookieValidator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth: empty session secret")
	}
	return &CookieValidator{secret: []byte(cfg.Secret), name: cfg.CookieName}, nil
}

// Validate implements Validator. Any malformed or tampered cookie reads as
// no session.
func (v *CookieValidator) Validate(r *http.Request) (User, error) {
	cookie, err := r.Cookie(v.name)
	if err != nil {
		return User{}, ErrNoSession
	}

	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 4 {
		return User{}, ErrNoSession
	}
	rawID, rawPlan, email, sig := parts[0], parts[1], parts[2], parts[3]

	if !timingsafe.Equal(sig, v.sign(rawID, rawPlan, email)) {
		return User{}, ErrNoSession
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return User{}, ErrNoSession
	}
	plan := entitlements.Tier(rawPlan)
	if _, err := entitlements.LimitsFor(plan); err != nil {
		return User{}, ErrNoSession
	}

	return User{ID: id, Email: email, Plan: plan}, nil
}

// Issue builds a signed cookie value for the user. Used by the auth frontend
// integration and by tests.
func (v *CookieValidator) Issue(user User) string {
	id := user.ID.String()
	plan := string(user.Plan)
	return id + "|" + plan + "|" + user.Email + "|" + v.sign(id, plan, user.Email)
}

func (v *CookieValidator) sign(userID, plan, email string) string {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(userID))
	h.Write([]byte{'|'})
	h.Write([]byte(plan))
	h.Write([]byte{'|'})
	h.Write([]byte(email))
	return hex.EncodeToString(h.Sum(nil))
}
