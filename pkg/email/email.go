package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrFailedToSend  = errors.New("email: failed to send")
	ErrInvalidConfig = errors.New("email: invalid config")
	ErrInvalidParams = errors.New("email: invalid send params")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Sender delivers a single transactional email.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// SendParams describes one outbound email.
type SendParams struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks the minimum viable envelope.
func (p SendParams) Validate() error {
	if !emailRegex.MatchString(p.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidParams, p.To)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidParams)
	}
	return nil
}

// Config holds sender identity and Postmark credentials. Tokens are optional
// so development environments can run with the file sender instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"hola@distribuia.com"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"soporte@distribuia.com"`
}
