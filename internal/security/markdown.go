// Package security renders backend-supplied text into HTML that is safe to embed.
package security

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// TextRenderer converts markdown or plain text to sanitized HTML.
// Newlines in plain text are kept as line breaks.
type TextRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewTextRenderer builds a renderer with GitHub-flavoured markdown and a UGC policy.
func NewTextRenderer() *TextRenderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: policy,
	}
}

// Render returns sanitized HTML for src. Empty input yields empty output.
func (r *TextRenderer) Render(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		// Conversion only fails on writer errors; fall back to escaped text.
		return template.HTML(template.HTMLEscapeString(src)) // #nosec G203 -- escaped above
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())) // #nosec G203 -- sanitized by bluemonday
}

// Sanitize strips unsafe markup from already-rendered HTML.
func (r *TextRenderer) Sanitize(raw string) template.HTML {
	return template.HTML(r.policy.Sanitize(raw)) // #nosec G203 -- sanitized by bluemonday
}
