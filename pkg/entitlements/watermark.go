package entitlements

// Format identifies a social media output format.
type Format string

const (
	FormatXThread         Format = "x_thread"
	FormatLinkedInPost    Format = "linkedin_post"
	FormatLinkedInArticle Format = "linkedin_article"
)

// watermarks are the fixed per-format suffixes appended to free-tier output.
var watermarks = map[Format]string{
	FormatXThread:         "\n\n🧵 Creado con distribuia.com",
	FormatLinkedInPost:    "\n\n—\nCreado con Distribuia · distribuia.com",
	FormatLinkedInArticle: "\n\n---\n*Este artículo fue creado con [Distribuia](https://distribuia.com).*",
}

// ApplyWatermarkIfNeeded appends the format's watermark when the tier is
// watermarked; otherwise the content is returned unchanged. Unknown formats
// pass through untouched.
func ApplyWatermarkIfNeeded(content string, format Format, tier Tier) string {
	if !ShouldWatermark(tier) {
		return content
	}
	suffix, ok := watermarks[format]
	if !ok {
		return content
	}
	return content + suffix
}
