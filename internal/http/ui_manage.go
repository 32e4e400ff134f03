package httpx

import (
	"net/http"
	"strings"

	"github.com/minboot/ats-web/internal/atsclient"
	"github.com/minboot/ats-web/internal/domain/model"
)

// ManageFilters are the management table's filters.
type ManageFilters struct {
	Title  string
	Status model.JobStatus
}

// ManageJobs lists every posting of the visitor's company, in all statuses.
func (h *UIHandlers) ManageJobs(w http.ResponseWriter, r *http.Request) {
	v := visitor(r)
	q := r.URL.Query()
	filters := ManageFilters{Title: strings.TrimSpace(q.Get("title"))}
	var status model.JobStatus
	if status.UnmarshalText([]byte(q.Get("status"))) == nil {
		filters.Status = status
	}

	b := NewTemplateData(r, PageMeta{Title: "Manage postings", PageTitle: "Manage postings", CurrentPage: PageManage}).
		With("Filters", filters).
		With("JobStatuses", model.JobStatuses)

	identity := IdentityFromContext(r.Context())
	if identity == nil || !identity.HasCompany() {
		h.renderPage(w, r, b.WithError(MsgNoCompany).Build())
		return
	}

	ctx, ticket := beginSearch(r, v, TargetManageResults)
	if ticket != nil {
		defer ticket.Done()
	}
	page, err := v.Client.CompanyJobs(ctx, *identity.CompanyID, atsclient.CompanyJobsQuery{
		Page:   model.PageRequest{Page: pageParam(q), Size: h.managePageSize()},
		Title:  filters.Title,
		Status: filters.Status,
	})
	if h.superseded(w, ticket) {
		return
	}
	if err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		b.WithError(UserMessage(err))
	} else {
		b.With("Jobs", page.Content).WithPagination(paginationFor(page, "/jobs/manage", q))
	}

	if ticket != nil {
		SetHXPushURL(w, buildPageURL("/jobs/manage", q, pageParam(q)))
		h.renderFragment(w, r, TargetManageResults, b.Build())
		return
	}
	h.renderPage(w, r, b.Build())
}
