package conversion

import (
	"time"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/entitlements"
)

// SourceType identifies what kind of input a conversion starts from.
type SourceType string

const (
	SourceYouTube SourceType = "youtube"
	SourceArticle SourceType = "article"
	SourceText    SourceType = "text"
)

// Conversion is one source processed for one user.
type Conversion struct {
	ID        uuid.UUID            `json:"id"`
	UserID    uuid.UUID            `json:"user_id"`
	Source    SourceType           `json:"source"`
	SourceRef string               `json:"source_ref"` // URL or a short excerpt for raw text
	Title     string               `json:"title"`
	Format    entitlements.Format  `json:"format"`
	CreatedAt time.Time            `json:"created_at"`
}

// OutputVersion is one generated rendering of a conversion in one format.
// Version 1 is the original; each regeneration increments the version.
type OutputVersion struct {
	ID           uuid.UUID           `json:"id"`
	ConversionID uuid.UUID           `json:"conversion_id"`
	Format       entitlements.Format `json:"format"`
	Version      int                 `json:"version"`
	Content      string              `json:"content"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Usage is a user's consumption snapshot for the current billing cycle.
type Usage struct {
	ConversionsUsed   int       `json:"conversions_used"`
	ConversionsLimit  int       `json:"conversions_limit"`
	Remaining         int       `json:"remaining"`
	BillingCycleStart time.Time `json:"billing_cycle_start"`
}
