package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minboot/ats-web/internal/atsclient"
	"github.com/minboot/ats-web/internal/domain/model"
	apperrors "github.com/minboot/ats-web/internal/errors"
	"github.com/minboot/ats-web/internal/session"
)

// BrowseFilters are the listing filters as entered by the visitor.
type BrowseFilters struct {
	Title          string
	CategoryID     *int64
	SubCategoryID  *int64
	EmploymentType model.EmploymentType
}

func parseBrowseFilters(q url.Values) BrowseFilters {
	f := BrowseFilters{
		Title:         strings.TrimSpace(q.Get("title")),
		CategoryID:    optionalID(q.Get("categoryId")),
		SubCategoryID: optionalID(q.Get("subCategoryId")),
	}
	if f.CategoryID == nil {
		f.SubCategoryID = nil
	}
	// "all" is the select's catch-all and means no filter.
	if et := strings.TrimSpace(q.Get("employmentType")); et != "" && et != "all" {
		f.EmploymentType = model.EmploymentType(et)
	}
	return f
}

// subCategories returns the children of the selected top-level category.
func subCategories(tree []model.Category, parentID *int64) []model.Category {
	if parentID == nil {
		return nil
	}
	for _, c := range tree {
		if c.ID == *parentID {
			return c.Children
		}
	}
	return nil
}

// beginSearch starts a latest-wins request when the visitor is typing into a search box.
// Full page loads are never superseded.
func beginSearch(r *http.Request, v *session.Visitor, target string) (context.Context, *session.Ticket) {
	if !IsHTMX(r) || HXTarget(r) != target {
		return r.Context(), nil
	}
	t := v.Search.Begin(r.Context())
	return t.Context(), t
}

// superseded reports whether a newer search replaced this one, answering htmx so the
// stale result is not swapped in.
func (h *UIHandlers) superseded(w http.ResponseWriter, t *session.Ticket) bool {
	if t == nil || t.Current() {
		return false
	}
	h.Metrics.RecordStaleDiscarded()
	HTMX(w).Discard()
	return true
}

// BrowseJobs renders the public listing at / and /jobs. Requests targeting the results
// fragment only re-render the list.
func (h *UIHandlers) BrowseJobs(w http.ResponseWriter, r *http.Request) {
	v := visitor(r)
	q := r.URL.Query()
	filters := parseBrowseFilters(q)
	query := atsclient.OpenJobsQuery{
		Page:           model.PageRequest{Page: pageParam(q), Size: h.browsePageSize()},
		Title:          filters.Title,
		CategoryID:     model.EffectiveCategory(filters.CategoryID, filters.SubCategoryID),
		EmploymentType: filters.EmploymentType,
	}

	ctx, ticket := beginSearch(r, v, TargetJobResults)
	if ticket != nil {
		defer ticket.Done()
	}
	resultsOnly := ticket != nil

	var (
		page   model.Page[model.Job]
		tree   []model.Category
		catErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = v.Client.OpenJobs(gctx, query)
		return err
	})
	if !resultsOnly {
		g.Go(func() error {
			// The listing still works without the filter tree.
			tree, catErr = v.Client.Categories(gctx)
			return nil
		})
	}
	err := g.Wait()
	if h.superseded(w, ticket) {
		return
	}

	b := NewTemplateData(r, PageMeta{Title: "Job postings", PageTitle: "Open positions", CurrentPage: PageHome}).
		With("Filters", filters).
		With("EmploymentTypes", model.EmploymentTypes).
		With("Categories", tree).
		With("SubCategories", subCategories(tree, filters.CategoryID))
	if err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		b.WithError(UserMessage(err))
	} else {
		b.With("Jobs", page.Content).WithPagination(paginationFor(page, "/jobs", q))
	}
	if catErr != nil && err == nil {
		h.logger().WarnContext(r.Context(), "load categories failed", "error", catErr)
	}

	if resultsOnly {
		SetHXPushURL(w, buildPageURL("/jobs", q, query.Page.Page))
		h.renderFragment(w, r, TargetJobResults, b.Build())
		return
	}
	h.renderPage(w, r, b.Build())
}

// JobDetail renders one posting. Edit and delete controls are shown to its owners.
func (h *UIHandlers) JobDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	v := visitor(r)
	job, err := v.Client.Job(r.Context(), id)

	b := NewTemplateData(r, PageMeta{Title: "Job posting", PageTitle: "Job posting", CurrentPage: PageJobDetail})
	if err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		h.renderPageStatus(w, r, statusFor(err), b.WithError(UserMessage(err)).Build())
		return
	}

	identity := IdentityFromContext(r.Context())
	data := b.
		With("Title", job.Title).
		With("Job", job).
		With("CanEdit", model.CanEdit(identity, job)).
		With("JobStatuses", model.JobStatuses).
		Build()
	h.renderPage(w, r, data)
}

// ChangeJobStatus moves a posting to the submitted status. From the management table the
// updated row is returned; otherwise the visitor is sent back to where they came from.
func (h *UIHandlers) ChangeJobStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid posting id", http.StatusBadRequest)
		return
	}
	var status model.JobStatus
	if err := status.UnmarshalText([]byte(r.PostFormValue("status"))); err != nil {
		h.actionFailed(w, r, "Choose a valid status.")
		return
	}

	v := visitor(r)
	if err := v.Client.ChangeJobStatus(r.Context(), id, status); err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		h.actionFailed(w, r, UserMessage(err))
		return
	}

	if IsHTMX(r) {
		job, err := v.Client.Job(r.Context(), id)
		if err != nil {
			triggerToast(w, "Status changed to "+status.Label()+".", "success")
			HTMX(w).Redirect(backTo(r, "/jobs/manage"))
			return
		}
		triggerToast(w, "Status changed to "+status.Label()+".", "success")
		h.renderFragment(w, r, "manage-row", map[string]any{
			"Job":         job,
			"JobStatuses": model.JobStatuses,
			"CSRFToken":   GetCSRFToken(r),
		})
		return
	}
	http.Redirect(w, r, backTo(r, "/jobs/manage"), http.StatusSeeOther)
}

// DeleteJob removes a posting. The backend refuses postings with applicants.
func (h *UIHandlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid posting id", http.StatusBadRequest)
		return
	}
	v := visitor(r)
	if err := v.Client.DeleteJob(r.Context(), id); err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		h.actionFailed(w, r, deleteFailureMessage(err))
		return
	}

	next := safeRedirectPath(r.PostFormValue("next"))
	if IsHTMX(r) {
		triggerToast(w, noticeText("job_deleted"), "success")
		if next != "" {
			HTMX(w).Redirect(next)
			return
		}
		// The table row swaps itself out with the empty body.
		w.WriteHeader(http.StatusOK)
		return
	}
	if next == "" {
		next = "/jobs/manage"
	}
	http.Redirect(w, r, withNotice(next, "job_deleted"), http.StatusSeeOther)
}

// deleteFailureMessage explains a refused delete. The backend reports the applicant
// constraint as a bare server error, so that case gets the fixed explanation; validation
// messages are shown verbatim.
func deleteFailureMessage(err error) string {
	if apperrors.GetCode(err) == apperrors.ErrCodeInternal {
		return MsgDeleteRefused
	}
	return UserMessage(err)
}

// actionFailed reports a failed row action: a toast for htmx, an error page otherwise.
func (h *UIHandlers) actionFailed(w http.ResponseWriter, r *http.Request, msg string) {
	if IsHTMX(r) {
		triggerToast(w, msg, "error")
		HTMX(w).Discard()
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Action failed", PageTitle: "Action failed"}).
		WithError(msg).
		With("Back", backTo(r, "/jobs/manage")).
		Build()
	w.Header().Set("Cache-Control", "no-store")
	sw := &statusWriter{ResponseWriter: w, status: http.StatusBadRequest}
	if err := h.T.RenderError(sw, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "error page")
	}
}

// backTo returns the local page the request came from, or fallback.
func backTo(r *http.Request, fallback string) string {
	if next := safeRedirectPath(r.PostFormValue("next")); next != "" {
		return next
	}
	if ref := safeRedirectFromURL(r.Header.Get("Referer")); ref != "" {
		return ref
	}
	return fallback
}

func withNotice(path, notice string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set("notice", notice)
	u.RawQuery = q.Encode()
	return u.String()
}
