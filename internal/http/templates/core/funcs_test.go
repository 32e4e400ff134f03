package core

import (
	"html/template"
	"strings"
	"testing"
	"time"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
)

func TestFormatNumber(t *testing.T) {
	cases := map[any]string{
		0:              "0",
		999:            "999",
		1000:           "1,000",
		int64(1234567): "1,234,567",
		-4500:          "-4,500",
		"x":            "",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFuncs_DeadlineUsesInjectedClock(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	var tmpl *template.Template
	funcs := Funcs(Deps{Template: &tmpl, ContentTemplateFor: func(string) string { return "" }, Now: func() time.Time { return now }})
	tmpl = template.Must(template.New("t").Funcs(funcs).Parse(`{{ with deadline . }}{{ .Text }}|{{ toneClass .Tone }}{{ end }}`))

	var sb strings.Builder
	deadline := model.LocalDateTime{Time: time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)}
	if err := tmpl.Execute(&sb, deadline); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sb.String() != "D-2|badge-warning" {
		t.Errorf("got %q", sb.String())
	}
}

func TestFuncs_RichTextEscapesWithoutRenderer(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{Template: &tmpl, ContentTemplateFor: func(string) string { return "" }})
	tmpl = template.Must(template.New("t").Funcs(funcs).Parse(`{{ richText . }}`))
	var sb strings.Builder
	if err := tmpl.Execute(&sb, "<script>x</script>"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(sb.String(), "<script>") {
		t.Errorf("expected escaped output, got %q", sb.String())
	}
}

func TestDict(t *testing.T) {
	m, err := Dict("Job", 1, "CSRFToken", "tok")
	if err != nil {
		t.Fatalf("Dict: %v", err)
	}
	if m["Job"] != 1 || m["CSRFToken"] != "tok" || len(m) != 2 {
		t.Errorf("Dict() = %v", m)
	}
	if _, err := Dict("odd"); err == nil {
		t.Error("odd argument count should fail")
	}
	if _, err := Dict(1, 2); err == nil {
		t.Error("non-string key should fail")
	}
}

func TestFuncs_RoleLabel(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{Template: &tmpl, ContentTemplateFor: func(string) string { return "" }})
	tmpl = template.Must(template.New("t").Funcs(funcs).Parse(`{{ range . }}{{ roleLabel . }};{{ end }}`))
	var sb strings.Builder
	roles := []domainauth.Role{domainauth.RoleRecruiter, "ROLE_AUDITOR"}
	if err := tmpl.Execute(&sb, roles); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sb.String() != "Recruiter;ROLE_AUDITOR;" {
		t.Errorf("roleLabel output = %q", sb.String())
	}
}
