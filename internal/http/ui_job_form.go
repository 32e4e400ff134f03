package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minboot/ats-web/internal/domain/model"
	"github.com/minboot/ats-web/internal/guard"
)

const msgNeedOneStep = "At least one hiring step is required."

// JobForm is the posting editor's state between round trips.
type JobForm struct {
	Mode          FormMode
	JobID         int64
	Request       model.JobRequest
	CategoryID    *int64
	SubCategoryID *int64
	CurrentStatus model.JobStatus
}

// Action returns the URL the form posts to.
func (f JobForm) Action() string {
	if f.Mode == FormModeEdit {
		return "/jobs/" + strconv.FormatInt(f.JobID, 10) + "/edit"
	}
	return "/jobs/new"
}

// NewJobForm renders an empty posting form.
func (h *UIHandlers) NewJobForm(w http.ResponseWriter, r *http.Request) {
	form := JobForm{Mode: FormModeCreate, Request: model.NewJobRequest()}
	tree, err := visitor(r).Client.Categories(r.Context())
	if err != nil && h.handleFailure(w, r, err) {
		return
	}
	h.renderJobForm(w, r, jobFormView{form: form, tree: tree, err: err})
}

// EditJobForm renders the form pre-filled from an existing posting the visitor owns.
func (h *UIHandlers) EditJobForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	v := visitor(r)

	var (
		job  model.Job
		tree []model.Category
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		job, err = v.Client.Job(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		tree, err = v.Client.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if h.handleFailure(w, r, err) {
			return
		}
		data := NewTemplateData(r, PageMeta{Title: "Edit posting", PageTitle: "Edit posting", CurrentPage: PageJobForm}).
			WithError(UserMessage(err)).
			Build()
		h.renderPageStatus(w, r, statusFor(err), data)
		return
	}
	if !model.CanEdit(IdentityFromContext(r.Context()), job) {
		redirect(w, r, guard.AccessDeniedPath)
		return
	}

	form := JobForm{
		Mode:          FormModeEdit,
		JobID:         job.ID,
		Request:       model.JobRequestFrom(job),
		CurrentStatus: job.Status,
	}
	form.CategoryID, form.SubCategoryID = categoryByName(tree, job.CategoryName)
	h.renderJobForm(w, r, jobFormView{form: form, tree: tree})
}

// SubmitJobForm handles both row edits (add or remove a step or question) and saving.
func (h *UIHandlers) SubmitJobForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := parseJobForm(r)
	v := visitor(r)

	action := r.PostFormValue("action")
	if action != "" && action != "save" {
		msg := applyRowAction(&form.Request, action)
		tree, err := v.Client.Categories(r.Context())
		if err != nil && h.handleFailure(w, r, err) {
			return
		}
		h.renderJobForm(w, r, jobFormView{form: form, tree: tree, err: err, message: msg})
		return
	}

	notice, err := h.saveJob(r.Context(), r, &form)
	if err == nil {
		redirect(w, r, withNotice("/jobs/manage", notice))
		return
	}
	if errors.Is(err, errNotOwner) {
		redirect(w, r, guard.AccessDeniedPath)
		return
	}
	var reqErr *model.JobRequestError
	if !errors.As(err, &reqErr) && h.handleFailure(w, r, err) {
		return
	}

	tree, catErr := v.Client.Categories(r.Context())
	if catErr != nil {
		h.logger().WarnContext(r.Context(), "load categories failed", "error", catErr)
	}
	h.renderJobForm(w, r, jobFormView{form: form, tree: tree, err: err, status: http.StatusUnprocessableEntity})
}

var errNotOwner = errors.New("posting belongs to another company")

// saveJob creates or updates the posting and applies the requested status. It returns the
// notice to show on the management page.
func (h *UIHandlers) saveJob(ctx context.Context, r *http.Request, form *JobForm) (string, error) {
	v := visitor(r)
	identity := IdentityFromContext(ctx)
	if identity == nil {
		return "", errors.New("no identity on a protected route")
	}

	req := form.Request
	req.Normalize()
	req.CategoryID = model.EffectiveCategory(form.CategoryID, form.SubCategoryID)
	creating := form.Mode == FormModeCreate
	if err := req.Validate(creating); err != nil {
		return "", err
	}
	target := targetStatus(r.PostFormValue("target_status"))

	if creating {
		if !identity.HasCompany() {
			return "", &model.JobRequestError{Field: "company", Message: MsgNoCompany}
		}
		req.CompanyID = identity.CompanyID
		id, err := v.Client.CreateJob(ctx, *identity.CompanyID, identity.ID, *req.CategoryID, req)
		if err != nil {
			return "", err
		}
		if target != "" && target != model.JobStatusDraft {
			if err := v.Client.ChangeJobStatus(ctx, id, target); err != nil {
				h.logger().WarnContext(ctx, "status change after create failed", "job_id", id, "error", err)
				return "status_failed", nil
			}
		}
		return "job_created", nil
	}

	current, err := v.Client.Job(ctx, form.JobID)
	if err != nil {
		return "", err
	}
	if !model.CanEdit(identity, current) {
		return "", errNotOwner
	}
	if err := v.Client.UpdateJob(ctx, form.JobID, req); err != nil {
		return "", err
	}
	if target != "" && target != current.Status {
		if err := v.Client.ChangeJobStatus(ctx, form.JobID, target); err != nil {
			h.logger().WarnContext(ctx, "status change after update failed", "job_id", form.JobID, "error", err)
			return "status_failed", nil
		}
	}
	return "job_updated", nil
}

func targetStatus(raw string) model.JobStatus {
	var s model.JobStatus
	if s.UnmarshalText([]byte(raw)) != nil {
		return ""
	}
	return s
}

type jobFormView struct {
	form    JobForm
	tree    []model.Category
	err     error
	message string
	status  int
}

func (h *UIHandlers) renderJobForm(w http.ResponseWriter, r *http.Request, view jobFormView) {
	title := "New posting"
	if view.form.Mode == FormModeEdit {
		title = "Edit posting"
	}
	b := NewTemplateData(r, PageMeta{Title: title, PageTitle: title, CurrentPage: PageJobForm}).
		With("Form", view.form).
		With("Categories", view.tree).
		With("SubCategories", subCategories(view.tree, view.form.CategoryID)).
		With("EmploymentTypes", model.EmploymentTypes).
		With("JobStatuses", model.JobStatuses).
		With("QuestionTypes", []model.QuestionType{model.QuestionTypeQuestion, model.QuestionTypeGuide})

	if view.err != nil {
		b.WithError(UserMessage(view.err))
		var reqErr *model.JobRequestError
		if errors.As(view.err, &reqErr) {
			b.WithFieldErrors(map[string]string{reqErr.Field: reqErr.Message})
		}
	}
	if view.message != "" {
		b.WithError(view.message)
	}
	status := view.status
	if status == 0 {
		status = http.StatusOK
	}
	h.renderPageStatus(w, r, status, b.Build())
}

// parseJobForm reads the posted form. Steps and questions arrive as parallel lists.
func parseJobForm(r *http.Request) JobForm {
	f := r.PostForm
	form := JobForm{
		Mode:          FormModeCreate,
		CategoryID:    optionalID(f.Get("categoryId")),
		SubCategoryID: optionalID(f.Get("subCategoryId")),
		CurrentStatus: targetStatus(f.Get("current_status")),
		Request: model.JobRequest{
			Title:          f.Get("title"),
			Content:        f.Get("content"),
			Deadline:       f.Get("deadline"),
			Location:       f.Get("location"),
			EmploymentType: model.EmploymentType(f.Get("employmentType")),
			SalaryRange:    f.Get("salaryRange"),
		},
	}
	if id, ok := pathID(r, "id"); ok {
		form.Mode = FormModeEdit
		form.JobID = id
	}
	if form.CategoryID == nil {
		form.SubCategoryID = nil
	}

	for i, name := range f["step_name"] {
		form.Request.Steps = append(form.Request.Steps, model.Step{Name: name, Order: i + 1})
	}
	types, required := f["question_type"], f["question_required"]
	for i, text := range f["question_text"] {
		q := model.Question{Text: text, Type: model.QuestionTypeQuestion, IsRequired: "Y", Order: i + 1}
		if i < len(types) && model.QuestionType(types[i]) == model.QuestionTypeGuide {
			q.Type = model.QuestionTypeGuide
		}
		if i < len(required) && required[i] == "N" {
			q.IsRequired = "N"
		}
		form.Request.Questions = append(form.Request.Questions, q)
	}
	return form
}

// applyRowAction adds or removes a step or question. It returns a message when the
// action is refused.
func applyRowAction(req *model.JobRequest, action string) string {
	name, idxRaw, _ := strings.Cut(action, ":")
	idx, idxErr := strconv.Atoi(idxRaw)

	switch name {
	case "add_step":
		req.Steps = append(req.Steps, model.Step{Order: len(req.Steps) + 1})
	case "remove_step":
		if len(req.Steps) <= 1 {
			return msgNeedOneStep
		}
		if idxErr == nil && idx >= 0 && idx < len(req.Steps) {
			req.Steps = append(req.Steps[:idx], req.Steps[idx+1:]...)
		}
	case "add_question":
		req.Questions = append(req.Questions, model.Question{
			Type: model.QuestionTypeQuestion, IsRequired: "Y", Order: len(req.Questions) + 1,
		})
	case "remove_question":
		if idxErr == nil && idx >= 0 && idx < len(req.Questions) {
			req.Questions = append(req.Questions[:idx], req.Questions[idx+1:]...)
		}
	}
	for i := range req.Steps {
		req.Steps[i].Order = i + 1
	}
	for i := range req.Questions {
		req.Questions[i].Order = i + 1
	}
	return ""
}

// categoryByName finds the category a posting was filed under. Postings only carry the
// category name, so the form's selects are restored by name.
func categoryByName(tree []model.Category, name string) (parent, child *int64) {
	if name == "" {
		return nil, nil
	}
	for _, c := range tree {
		if c.Name == name {
			id := c.ID
			return &id, nil
		}
		for _, sub := range c.Children {
			if sub.Name == name {
				pid, cid := c.ID, sub.ID
				return &pid, &cid
			}
		}
	}
	return nil, nil
}
