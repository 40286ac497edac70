package unsubscribe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/distribuia/distribuia/pkg/timingsafe"
)

// tokenLength is the hex-encoded length of a truncated HMAC-SHA256 digest.
const tokenLength = 32

// Tokenizer derives and verifies unsubscribe tokens for a fixed secret.
type Tokenizer struct {
	secret []byte
	appURL string
}

// New creates a Tokenizer from config. The secret is required; the app URL
// falls back to the config default.
func New(cfg Config) (*Tokenizer, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &Tokenizer{
		secret: []byte(cfg.Secret),
		appURL: strings.TrimSuffix(cfg.AppURL, "/"),
	}, nil
}

// Generate returns the 32-character lowercase hex token for the given user id.
// Deterministic: the same user id always produces the same token.
func (t *Tokenizer) Generate(userID string) string {
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil)[:tokenLength/2])
}

// Validate reports whether token is the expected token for userID. Malformed
// input returns false without recomputing the HMAC; well-formed tokens are
// compared in constant time.
func (t *Tokenizer) Validate(userID, token string) bool {
	if userID == "" || token == "" || len(token) != tokenLength {
		return false
	}
	return timingsafe.Equal(token, t.Generate(userID))
}

// BuildURL composes the unsubscribe link embedded in email footers:
// <appURL>/api/user/email-preferences?token=<token>&user=<userID>.
func (t *Tokenizer) BuildURL(userID string) string {
	return fmt.Sprintf("%s/api/user/email-preferences?token=%s&user=%s",
		t.appURL, t.Generate(userID), url.QueryEscape(userID))
}
