package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Markdown(t *testing.T) {
	r := NewTextRenderer()
	out := string(r.Render("## Responsibilities\n\n- Build APIs\n- **Own** services"))

	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<li>Build APIs</li>")
	assert.Contains(t, out, "<strong>Own</strong>")
}

func TestRender_KeepsLineBreaks(t *testing.T) {
	r := NewTextRenderer()
	out := string(r.Render("Line one\nLine two"))
	assert.Contains(t, out, "<br")
}

func TestRender_StripsScripts(t *testing.T) {
	r := NewTextRenderer()
	out := string(r.Render("Hello <script>alert(1)</script> <a href=\"javascript:alert(1)\">x</a> <img src=x onerror=alert(1)>"))

	assert.NotContains(t, strings.ToLower(out), "<script")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
}

func TestRender_LinksGetNoFollow(t *testing.T) {
	r := NewTextRenderer()
	out := string(r.Render("[careers](https://example.com/careers)"))
	assert.Contains(t, out, "nofollow")
	assert.Contains(t, out, "noopener")
	assert.Contains(t, out, `target="_blank"`)
}

func TestRender_Empty(t *testing.T) {
	assert.Empty(t, NewTextRenderer().Render("   \n"))
}

func TestSanitize(t *testing.T) {
	out := string(NewTextRenderer().Sanitize(`<p onclick="x()">ok</p><iframe src="https://evil"></iframe>`))
	assert.Equal(t, "<p>ok</p>", out)
}
