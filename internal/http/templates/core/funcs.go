// Package core provides the template helpers shared by every page.
package core

import (
	"bytes"
	"errors"
	"html/template"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
)

// TextRenderer turns backend text into safe HTML.
type TextRenderer interface {
	Render(src string) template.HTML
	Sanitize(raw string) template.HTML
}

// Deps holds dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
	Text               TextRenderer
	// Now is used for deadline countdowns; time.Now when nil.
	Now func() time.Time
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	funcs := template.FuncMap{
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"formatNumber": FormatNumber,
		"dateTime":     FormatDateTime,
		"deadline": func(t model.LocalDateTime) model.DeadlineBadge {
			return model.Countdown(t, now())
		},
		"toneClass":    ToneClass,
		"statusClass":  StatusClass,
		"roleLabel":    func(r domainauth.Role) string { return r.Label() },
		"isSelectedID": isSelectedID,
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped above.
		return template.HTML(buf.String()), nil
	}

	funcs["dict"] = Dict

	// Job descriptions are stored as sanitized rich text; chatbot answers are markdown.
	funcs["richText"] = func(s string) template.HTML {
		if deps.Text == nil {
			return template.HTML(template.HTMLEscapeString(s)) // #nosec G203 - escaped
		}
		return deps.Text.Sanitize(s)
	}
	funcs["markdown"] = func(s string) template.HTML {
		if deps.Text == nil {
			return template.HTML(template.HTMLEscapeString(s)) // #nosec G203 - escaped
		}
		return deps.Text.Render(s)
	}
}

// Dict builds a map from alternating keys and values so a template can pass several
// values to a sub-template.
func Dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// FormatDateTime formats a backend timestamp for display; zero values render empty.
func FormatDateTime(t model.LocalDateTime) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// ToneClass maps a deadline tone to a badge class.
func ToneClass(t model.Tone) string {
	switch t {
	case model.ToneClosed:
		return "badge-secondary"
	case model.ToneDanger:
		return "badge-danger"
	case model.ToneWarning:
		return "badge-warning"
	case model.TonePrimary:
		return "badge-primary"
	default:
		return "badge-light"
	}
}

// StatusClass maps a posting status to a badge class.
func StatusClass(s model.JobStatus) string {
	switch s {
	case model.JobStatusOpen:
		return "badge-success"
	case model.JobStatusClosed:
		return "badge-secondary"
	default:
		return "badge-light"
	}
}

func isSelectedID(selected *int64, id int64) bool {
	return selected != nil && *selected == id
}

// FormatNumber formats an integer with comma separators for thousands.
func FormatNumber(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case int32:
		n = int64(x)
	default:
		return ""
	}
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	prefix := len(s) % 3
	if prefix == 0 {
		prefix = 3
	}
	b.WriteString(s[:prefix])
	for i := prefix; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
