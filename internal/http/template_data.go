package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/minboot/ats-web/internal/domain/model"
)

const maxPageLinks = 5

// PageLink is one numbered link of a pager.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// PaginationData contains pagination information for list views. Page is one-based.
type PaginationData struct {
	Page       int
	TotalPages int
	TotalCount int64
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

// paginationFor converts a backend page into UI pagination. Links keep the request's
// filters and replace only the page parameter.
func paginationFor[T any](page model.Page[T], basePath string, q url.Values) PaginationData {
	current := model.UIPage(page.Number)
	p := PaginationData{
		Page:       current,
		TotalPages: page.TotalPages,
		TotalCount: page.TotalElements,
		HasPrev:    current > 1,
		HasNext:    current < page.TotalPages,
	}
	if p.HasPrev {
		p.PrevURL = buildPageURL(basePath, q, current-1)
	}
	if p.HasNext {
		p.NextURL = buildPageURL(basePath, q, current+1)
	}

	first := max(1, current-maxPageLinks/2)
	last := min(page.TotalPages, first+maxPageLinks-1)
	first = max(1, last-maxPageLinks+1)
	for n := first; n <= last; n++ {
		p.Links = append(p.Links, PageLink{Number: n, URL: buildPageURL(basePath, q, n), Current: n == current})
	}
	return p
}

// buildPageURL returns a URL with page set, preserving other non-empty query params.
func buildPageURL(basePath string, q url.Values, page int) string {
	qq := make(url.Values, len(q))
	for k, v := range q {
		if k == "notice" {
			continue
		}
		tmp := make([]string, 0, len(v))
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			qq[k] = tmp
		}
	}
	if page > 1 {
		qq.Set("page", strconv.Itoa(page))
	} else {
		qq.Del("page")
	}
	if enc := qq.Encode(); enc != "" {
		return basePath + "?" + enc
	}
	return basePath
}

// pageParam parses the one-based page query parameter, defaulting to 1.
func pageParam(q url.Values) int {
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		return n
	}
	return 1
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithPagination adds pagination data.
func (b *TemplateDataBuilder) WithPagination(p PaginationData) *TemplateDataBuilder {
	b.data["Pagination"] = p
	return b
}

// WithError sets a general error message. Empty messages are ignored.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	if msg == "" {
		return b
	}
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// WithNotice sets a success message.
func (b *TemplateDataBuilder) WithNotice(msg string) *TemplateDataBuilder {
	if msg != "" {
		b.data["Notice"] = msg
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
