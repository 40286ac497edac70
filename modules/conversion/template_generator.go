package conversion

import (
	"context"
	"fmt"

	"github.com/distribuia/distribuia/pkg/entitlements"
)

// TemplateGenerator renders deterministic per-format scaffolding from the
// source reference. It stands in for the model-backed generator, which runs
// as a separate service; deployments without one still get a working
// pipeline.
type TemplateGenerator struct{}

// NewTemplateGenerator creates the fallback generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Generate implements Generator.
func (g *TemplateGenerator) Generate(_ context.Context, req GenerateRequest) (string, string, error) {
	title := fmt.Sprintf("Borrador de %s", sourceLabel(req.Source))

	var content string
	switch req.Format {
	case entitlements.FormatXThread:
		content = fmt.Sprintf("1/ Hilo basado en %s: %s\n\n2/ Desarrolla aquí las ideas principales.\n\n3/ Cierra con una llamada a la acción.", sourceLabel(req.Source), req.SourceRef)
	case entitlements.FormatLinkedInPost:
		content = fmt.Sprintf("Publicación basada en %s.\n\nFuente: %s\n\nResume aquí el mensaje clave en dos o tres párrafos.", sourceLabel(req.Source), req.SourceRef)
	case entitlements.FormatLinkedInArticle:
		content = fmt.Sprintf("# %s\n\nArtículo elaborado a partir de %s.\n\nFuente: %s", title, sourceLabel(req.Source), req.SourceRef)
	default:
		return "", "", fmt.Errorf("%w: format %q", ErrInvalidInput, req.Format)
	}

	if req.Regenerate {
		content = "Versión alternativa.\n\n" + content
	}
	return title, content, nil
}

func sourceLabel(source SourceType) string {
	switch source {
	case SourceYouTube:
		return "un vídeo de YouTube"
	case SourceArticle:
		return "un artículo"
	default:
		return "texto propio"
	}
}
