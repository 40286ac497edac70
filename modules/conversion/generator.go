package conversion

import (
	"context"

	"github.com/distribuia/distribuia/pkg/entitlements"
)

// GenerateRequest describes one generation call to the LLM backend.
type GenerateRequest struct {
	Source    SourceType
	SourceRef string
	Format    entitlements.Format
	// Regenerate asks the backend for a variation distinct from earlier
	// versions of the same conversion.
	Regenerate bool
}

// Generator is the LLM backend collaborator. Implementations wrap the
// external completion API; tests substitute a canned fake.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (title, content string, err error)
}
