package emailprefs

import (
	"time"

	"github.com/google/uuid"
)

// Preferences is a user's email consent state. A user without a stored row
// reads as the default: all categories on, not unsubscribed.
type Preferences struct {
	UserID          uuid.UUID  `json:"user_id"`
	MarketingEmails bool       `json:"marketing_emails"`
	ProductUpdates  bool       `json:"product_updates"`
	UnsubscribedAt  *time.Time `json:"unsubscribed_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Unsubscribed reports whether the user opted out of all non-transactional
// email.
func (p Preferences) Unsubscribed() bool {
	return p.UnsubscribedAt != nil
}

// UpdateInput is the payload for an authenticated preferences update.
type UpdateInput struct {
	MarketingEmails bool `json:"marketing_emails"`
	ProductUpdates  bool `json:"product_updates"`
}

func defaultPreferences(userID uuid.UUID) Preferences {
	return Preferences{
		UserID:          userID,
		MarketingEmails: true,
		ProductUpdates:  true,
	}
}
