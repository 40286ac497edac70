package emailprefs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/email"
	"github.com/distribuia/distribuia/pkg/unsubscribe"
)

// Category classifies an outbound email for consent purposes.
type Category string

const (
	// CategoryTransactional emails (receipts, password resets) ignore
	// consent and carry no unsubscribe footer.
	CategoryTransactional Category = "transactional"
	CategoryMarketing     Category = "marketing"
	CategoryProduct       Category = "product"
)

// Mailer sends consent-gated email with the unsubscribe footer appended.
type Mailer struct {
	sender  email.Sender
	service *Service
	tokens  *unsubscribe.Tokenizer
	log     *slog.Logger
}

// NewMailer wires the consent-aware mailer.
func NewMailer(sender email.Sender, service *Service, tokens *unsubscribe.Tokenizer, log *slog.Logger) *Mailer {
	if log == nil {
		log = slog.Default()
	}
	return &Mailer{sender: sender, service: service, tokens: tokens, log: log}
}

// Send delivers one email to a user, honoring their consent for the given
// category. Suppressed sends return nil: to the caller a skipped marketing
// email is a success.
func (m *Mailer) Send(ctx context.Context, userID uuid.UUID, to string, category Category, params email.SendParams) error {
	if category != CategoryTransactional {
		prefs, err := m.service.Get(ctx, userID)
		if err != nil {
			return err
		}
		if !m.allowed(prefs, category) {
			m.log.InfoContext(ctx, "email suppressed by consent",
				slog.String("user_id", userID.String()),
				slog.String("category", string(category)),
			)
			return nil
		}
		params.BodyHTML += m.footer(userID.String())
	}

	params.To = to
	if params.Tag == "" {
		params.Tag = string(category)
	}
	return m.sender.Send(ctx, params)
}

func (m *Mailer) allowed(prefs Preferences, category Category) bool {
	if prefs.Unsubscribed() {
		return false
	}
	switch category {
	case CategoryMarketing:
		return prefs.MarketingEmails
	case CategoryProduct:
		return prefs.ProductUpdates
	default:
		return true
	}
}

func (m *Mailer) footer(userID string) string {
	return fmt.Sprintf(
		`<hr><p style="font-size:12px;color:#667085">¿No quieres recibir más correos como este? <a href="%s">Cancelar suscripción</a></p>`,
		m.tokens.BuildURL(userID),
	)
}
