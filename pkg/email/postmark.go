package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkSender struct {
	client *postmark.Client
	cfg    Config
}

// NewPostmarkSender creates a Postmark-backed sender. All credentials and
// identities must be present: production misconfiguration should fail at
// startup, not at first send.
func NewPostmarkSender(cfg Config) (Sender, error) {
	if cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: postmark tokens are required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: sender email %q", ErrInvalidConfig, cfg.SenderEmail)
	}
	if !emailRegex.MatchString(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: support email %q", ErrInvalidConfig, cfg.SupportEmail)
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg:    cfg,
	}, nil
}

// Send implements Sender. Replies go to the support inbox so customer
// responses reach a human.
func (s *postmarkSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.cfg.SenderEmail,
		ReplyTo:    s.cfg.SupportEmail,
		To:         params.To,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
