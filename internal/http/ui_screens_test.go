package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minboot/ats-web/internal/domain/model"
	fakes "github.com/minboot/ats-web/internal/testutil"
)

func TestGuard_AnonymousProtectedPathRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.get("/jobs/manage?status=OPEN")
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/login?from="+url.QueryEscape("/jobs/manage?status=OPEN"), p.Header.Get("Location"))
}

func TestGuard_WrongRoleIsDenied(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.InterviewerEmail)

	p := b.get("/jobs/manage")
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/access-denied", p.Header.Get("Location"))

	p = b.get("/access-denied")
	assert.Equal(t, http.StatusForbidden, p.Status)
}

func TestGuard_UnknownPathGoesHome(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.get("/no/such/page")
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/", p.Header.Get("Location"))
}

func TestGuard_HTMXRedirectUsesHeader(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.htmxGet("/jobs/manage", "content")
	assert.Equal(t, http.StatusNoContent, p.Status)
	assert.True(t, strings.HasPrefix(p.Header.Get("Hx-Redirect"), "/login"))
}

func TestLogin_Success(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/login", url.Values{
		"email":    {fakes.RecruiterEmail},
		"password": {fakes.FixturePassword},
		"from":     {"/jobs/manage"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/jobs/manage", p.Header.Get("Location"))

	p = b.get("/jobs/manage")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Backend engineer")
	assert.Contains(t, p.Body, "Kim Recruiter")
}

func TestLogin_RejectsExternalFrom(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/login", url.Values{
		"email":    {fakes.RecruiterEmail},
		"password": {fakes.FixturePassword},
		"from":     {"//evil.example/steal"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/", p.Header.Get("Location"))
}

func TestLogin_BadCredentials(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/login", url.Values{"email": {fakes.RecruiterEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, p.Status)
	assert.Contains(t, p.Body, MsgBadCredentials)
	assert.Contains(t, p.Body, fakes.RecruiterEmail)

	p = b.get("/jobs/manage")
	assert.Equal(t, http.StatusSeeOther, p.Status)
}

func TestLogin_BackendUnreachable(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.csrf()
	app.ATS.Server.Close()

	p := b.post("/login", url.Values{
		"email":    {fakes.RecruiterEmail},
		"password": {fakes.FixturePassword},
	})
	assert.Equal(t, http.StatusBadGateway, p.Status)
	assert.Contains(t, p.Body, MsgUnreachable)
	assert.NotContains(t, p.Body, MsgBadCredentials)
}

func TestLogin_MissingFields(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/login", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.NotContains(t, app.ATS.Requests(), "POST /api/auth/login")
}

func TestLogin_Throttled(t *testing.T) {
	app := newTestApp(t, func(s *RouterServices) {
		s.UI.Limiter = NewLoginLimiter(LoginLimiterConfig{PerMinute: 1, Burst: 1})
	})
	b := app.newBrowser(t)

	p := b.post("/login", url.Values{"email": {fakes.RecruiterEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, p.Status)
	p = b.post("/login", url.Values{"email": {fakes.RecruiterEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusTooManyRequests, p.Status)
	assert.Contains(t, p.Body, MsgTooManyAttempts)
}

func TestLogin_RequiresCSRF(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.csrf()

	req := b.request(http.MethodPost, "/login",
		strings.NewReader(url.Values{"email": {fakes.RecruiterEmail}, "password": {fakes.FixturePassword}}.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	p := b.do(req)
	assert.Equal(t, http.StatusForbidden, p.Status)
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name       string
		failLogout bool
	}{
		{name: "backend succeeds"},
		{name: "backend fails", failLogout: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.ATS.SetFailLogout(tt.failLogout)
			b := app.newBrowser(t)
			b.login(fakes.RecruiterEmail)

			p := b.post("/logout", nil)
			require.Equal(t, http.StatusSeeOther, p.Status)
			assert.Equal(t, "/login?notice=signed_out", p.Header.Get("Location"))

			p = b.get("/login?notice=signed_out")
			require.Equal(t, http.StatusOK, p.Status)
			assert.Contains(t, p.Body, noticeText("signed_out"))

			p = b.get("/jobs/manage")
			assert.Equal(t, http.StatusSeeOther, p.Status)
			assert.True(t, strings.HasPrefix(p.Header.Get("Location"), "/login"))
		})
	}
}

func TestBrowse_ListsOpenJobs(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.get("/")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Backend engineer")
	assert.Contains(t, p.Body, "Product designer")
	assert.Contains(t, p.Body, "Engineering")
	assert.Contains(t, app.ATS.Requests(), "GET /api/jobs/open?page=0&size=9")
}

func TestBrowse_PageIsOneBased(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.get("/jobs?page=2")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, app.ATS.Requests(), "GET /api/jobs/open?page=1&size=9")
}

func TestBrowse_SearchFragment(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.get("/")

	p := b.htmxGet("/jobs?title=designer", TargetJobResults)
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Product designer")
	assert.NotContains(t, p.Body, "Backend engineer")
	assert.NotContains(t, p.Body, "<html")
	assert.Equal(t, "/jobs?title=designer", p.Header.Get("Hx-Push-Url"))
}

func TestBrowse_LatestSearchWins(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.get("/")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	app.ATS.SetBeforeOpenJobs(func(r *http.Request) {
		if r.URL.Query().Get("title") == "b" {
			once.Do(func() { close(started) })
			<-release
		}
	})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	stale := make(chan page, 1)
	go func() { stale <- b.htmxGet("/jobs?title=b", TargetJobResults) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first search never reached the backend")
	}

	fresh := b.htmxGet("/jobs?title=backend", TargetJobResults)
	require.Equal(t, http.StatusOK, fresh.Status)
	assert.Contains(t, fresh.Body, "Backend engineer")
	unblock()

	old := <-stale
	assert.Equal(t, http.StatusNoContent, old.Status)
	assert.Equal(t, "none", old.Header.Get("Hx-Reswap"))
	assert.InDelta(t, 1, app.counter(t, "atsweb_search_stale_discarded_total"), 0)
}

func TestJobDetail(t *testing.T) {
	app := newTestApp(t)
	acme := int64(7)
	id := app.ATS.AddJob(model.Job{Title: "SRE", Content: "Keep **things** up", Status: model.JobStatusOpen,
		CompanyID: &acme, CompanyName: "Acme", Steps: []model.Step{{Name: "Interview", Order: 1}}})

	anon := app.newBrowser(t)
	p := anon.get(fmt.Sprintf("/jobs/%d", id))
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "SRE")
	assert.Contains(t, p.Body, "Interview")
	assert.NotContains(t, p.Body, fmt.Sprintf("/jobs/%d/edit", id))

	owner := app.newBrowser(t)
	owner.login(fakes.RecruiterEmail)
	p = owner.get(fmt.Sprintf("/jobs/%d", id))
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, fmt.Sprintf("/jobs/%d/edit", id))
}

func TestJobDetail_NotFound(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.get("/jobs/9999")
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.Body, "Job posting not found.")
}

func TestManage_DeleteRefusedExplainsApplicants(t *testing.T) {
	app := newTestApp(t)
	acme := int64(7)
	id := app.ATS.AddJob(model.Job{Title: "Busy", Status: model.JobStatusOpen, CompanyID: &acme})
	app.ATS.SetApplicants(id, 2)

	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.htmxPost(fmt.Sprintf("/jobs/%d/delete", id), nil, "/jobs/manage")
	assert.Equal(t, http.StatusNoContent, p.Status)

	var trigger map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(p.Header.Get("Hx-Trigger")), &trigger))
	assert.Equal(t, MsgDeleteRefused, trigger["showToast"]["message"])
	assert.Equal(t, "error", trigger["showToast"]["type"])

	_, still := app.ATS.JobByID(id)
	assert.True(t, still)
}

func TestManage_DeleteRemovesRow(t *testing.T) {
	app := newTestApp(t)
	acme := int64(7)
	id := app.ATS.AddJob(model.Job{Title: "Gone soon", Status: model.JobStatusDraft, CompanyID: &acme})

	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.htmxPost(fmt.Sprintf("/jobs/%d/delete", id), nil, "/jobs/manage")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Empty(t, p.Body)
	_, still := app.ATS.JobByID(id)
	assert.False(t, still)
}

func TestManage_ChangeStatusReturnsRow(t *testing.T) {
	app := newTestApp(t)
	acme := int64(7)
	id := app.ATS.AddJob(model.Job{Title: "Draft role", Status: model.JobStatusDraft, CompanyID: &acme})

	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.htmxPost(fmt.Sprintf("/jobs/%d/status", id), url.Values{"status": {"OPEN"}}, "/jobs/manage")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Draft role")

	job, _ := app.ATS.JobByID(id)
	assert.Equal(t, model.JobStatusOpen, job.Status)
}

func TestJobForm_CreateAndOpen(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.get("/jobs/new")
	require.Equal(t, http.StatusOK, p.Status)

	p = b.post("/jobs/new", url.Values{
		"action":         {"save"},
		"title":          {"  Data engineer "},
		"content":        {"Pipelines"},
		"categoryId":     {"1"},
		"subCategoryId":  {"11"},
		"employmentType": {string(model.EmploymentFullTime)},
		"deadline":       {"2026-04-01T18:00"},
		"step_name":      {"Screening", "Interview"},
		"question_text":  {"Why us?"},
		"question_type":  {"QUESTION"},
		"target_status":  {"OPEN"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	assert.Equal(t, "/jobs/manage?notice=job_created", p.Header.Get("Location"))

	var created model.Job
	for _, j := range []int64{103, 104, 105} {
		if job, ok := app.ATS.JobByID(j); ok && job.Title == "Data engineer" {
			created = job
		}
	}
	require.NotZero(t, created.ID)
	assert.Equal(t, model.JobStatusOpen, created.Status)
	require.Len(t, created.Steps, 2)
	assert.Equal(t, 2, created.Steps[1].Order)
	assert.Contains(t, app.ATS.Requests(), "POST /api/jobs/company/7/user/3/category/11")
}

func TestJobForm_ValidationError(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.post("/jobs/new", url.Values{
		"title":     {"No category"},
		"content":   {"x"},
		"step_name": {"Screening"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, "Choose a category.")
	assert.Contains(t, p.Body, "No category")
}

func TestJobForm_RowActions(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.post("/jobs/new", url.Values{"action": {"remove_step:0"}, "step_name": {"Only"}})
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, msgNeedOneStep)
	assert.Contains(t, p.Body, `value="Only"`)

	p = b.post("/jobs/new", url.Values{"action": {"add_step"}, "step_name": {"First"}})
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, 2, strings.Count(p.Body, `name="step_name"`))
}

func TestJobForm_EditForeignPostingDenied(t *testing.T) {
	app := newTestApp(t)
	other := int64(99)
	id := app.ATS.AddJob(model.Job{Title: "Theirs", Status: model.JobStatusOpen, CompanyID: &other})

	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.get(fmt.Sprintf("/jobs/%d/edit", id))
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/access-denied", p.Header.Get("Location"))
}

func TestJobForm_EditSave(t *testing.T) {
	app := newTestApp(t)
	acme, other := int64(7), int64(99)
	id := app.ATS.AddJob(model.Job{Title: "Old title", Content: "Old", Status: model.JobStatusDraft, CompanyID: &acme})
	foreign := app.ATS.AddJob(model.Job{Title: "Theirs", Content: "Kept", Status: model.JobStatusOpen, CompanyID: &other})

	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.get(fmt.Sprintf("/jobs/%d/edit", id))
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, fmt.Sprintf(`action="/jobs/%d/edit"`, id))

	form := url.Values{
		"action":        {"save"},
		"title":         {"New title"},
		"content":       {"Updated description"},
		"step_name":     {"Screening", "Interview"},
		"target_status": {"OPEN"},
	}
	p = b.post(fmt.Sprintf("/jobs/%d/edit", id), form)
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	assert.Equal(t, "/jobs/manage?notice=job_updated", p.Header.Get("Location"))

	job, ok := app.ATS.JobByID(id)
	require.True(t, ok)
	assert.Equal(t, "New title", job.Title)
	assert.Equal(t, "Updated description", job.Content)
	assert.Len(t, job.Steps, 2)
	assert.Equal(t, model.JobStatusOpen, job.Status)
	reqs := app.ATS.Requests()
	assert.Contains(t, reqs, fmt.Sprintf("PUT /api/jobs/%d", id))
	assert.Contains(t, reqs, fmt.Sprintf("PUT /api/jobs/%d/status?status=OPEN", id))

	// Same status: no status call.
	form.Set("title", "Newer title")
	p = b.post(fmt.Sprintf("/jobs/%d/edit", id), form)
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	statusCalls := 0
	for _, r := range app.ATS.Requests() {
		if strings.HasPrefix(r, fmt.Sprintf("PUT /api/jobs/%d/status", id)) {
			statusCalls++
		}
	}
	assert.Equal(t, 1, statusCalls)

	p = b.post(fmt.Sprintf("/jobs/%d/edit", foreign), form)
	assert.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/access-denied", p.Header.Get("Location"))
	theirs, _ := app.ATS.JobByID(foreign)
	assert.Equal(t, "Theirs", theirs.Title)
	assert.Equal(t, model.JobStatusOpen, theirs.Status)
	assert.NotContains(t, app.ATS.Requests(), fmt.Sprintf("PUT /api/jobs/%d", foreign))
}

func TestApplyRowAction(t *testing.T) {
	req := model.JobRequest{Steps: []model.Step{{Name: "a"}, {Name: "b"}, {Name: "c"}}}

	assert.Empty(t, applyRowAction(&req, "remove_step:1"))
	require.Len(t, req.Steps, 2)
	assert.Equal(t, "c", req.Steps[1].Name)
	assert.Equal(t, 2, req.Steps[1].Order)

	assert.Empty(t, applyRowAction(&req, "add_question"))
	require.Len(t, req.Questions, 1)
	assert.Equal(t, "Y", req.Questions[0].IsRequired)

	assert.Empty(t, applyRowAction(&req, "remove_question:5"))
	assert.Len(t, req.Questions, 1)

	req.Steps = req.Steps[:1]
	assert.Equal(t, msgNeedOneStep, applyRowAction(&req, "remove_step:0"))
	assert.Len(t, req.Steps, 1)
}

func TestSignup_ExistingCompany(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/signup", url.Values{
		"email":            {"new@example.com"},
		"name":             {"Choi New"},
		"role":             {"ROLE_RECRUITER"},
		"company_mode":     {"existing"},
		"companyId":        {"7"},
		"password":         {"abcd"},
		"password_confirm": {"abcd"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	assert.Equal(t, "/login?notice=signed_up", p.Header.Get("Location"))
	b.loginWith("new@example.com", "abcd")
}

func TestSignup_Validation(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/signup", url.Values{
		"email":            {fakes.RecruiterEmail},
		"name":             {"Dup"},
		"role":             {"ROLE_RECRUITER"},
		"company_mode":     {"existing"},
		"companyId":        {"7"},
		"password":         {"abcd"},
		"password_confirm": {"abcd"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, msgEmailTaken)

	p = b.post("/signup", url.Values{
		"email":            {"x@example.com"},
		"name":             {"X"},
		"role":             {"ROLE_RECRUITER"},
		"company_mode":     {"new"},
		"password":         {"abcd"},
		"password_confirm": {"abce"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Contains(t, p.Body, msgPasswordsDiffer)
}

func TestEmailCheck(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.htmxGet("/signup/email-check?email="+url.QueryEscape(fakes.RecruiterEmail), "email-check")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, msgEmailTaken)

	p = b.htmxGet("/signup/email-check?email=free%40example.com", "email-check")
	assert.Contains(t, p.Body, "This email is available.")

	p = b.htmxGet("/signup/email-check?email=nope", "email-check")
	assert.Contains(t, p.Body, "Enter a valid email address.")
}

func TestResetPassword(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/reset-password", url.Values{
		"companyName":      {"Acme"},
		"name":             {"Kim Recruiter"},
		"email":            {fakes.RecruiterEmail},
		"password":         {"n3wpass"},
		"password_confirm": {"n3wpass"},
	})
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Password has been reset.")

	p = b.post("/login", url.Values{"email": {fakes.RecruiterEmail}, "password": {"n3wpass"}})
	assert.Equal(t, http.StatusSeeOther, p.Status)
}

func TestResetPassword_NoMatch(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.post("/reset-password", url.Values{
		"companyName":      {"Other"},
		"name":             {"Kim Recruiter"},
		"email":            {fakes.RecruiterEmail},
		"password":         {"n3wpass"},
		"password_confirm": {"n3wpass"},
	})
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Body, "No user matches the given details.")
}

func TestWithdraw(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.InterviewerEmail)

	p := b.post("/withdraw", url.Values{"confirm": {"nope"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)

	p = b.post("/withdraw", url.Values{"confirm": {WithdrawPhrase}})
	require.Equal(t, http.StatusSeeOther, p.Status)
	assert.Equal(t, "/?notice=withdrawn", p.Header.Get("Location"))

	p = b.post("/login", url.Values{"email": {fakes.InterviewerEmail}, "password": {fakes.FixturePassword}})
	assert.Equal(t, http.StatusUnauthorized, p.Status)
}

func TestProfile_Update(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.post("/profile", url.Values{
		"name":        {"Kim Renamed"},
		"email":       {fakes.RecruiterEmail},
		"companyName": {"Acme"},
	})
	require.Equal(t, http.StatusSeeOther, p.Status, p.Body)
	assert.Equal(t, "/profile?notice=profile_saved", p.Header.Get("Location"))

	p = b.get("/profile")
	assert.Contains(t, p.Body, "Kim Renamed")
}

func TestChatbot(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.login(fakes.RecruiterEmail)

	p := b.htmxPost("/chatbot/ask", url.Values{"message": {"Help me"}}, "/jobs/new")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "Help me")
	assert.Contains(t, p.Body, "<strong>Hello</strong>")

	app.ATS.SetChatAnswer("")
	p = b.htmxPost("/chatbot/ask", url.Values{"message": {"Again"}}, "/jobs/new")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, MsgChatbotFallback)

	p = b.htmxPost("/chatbot/ask", url.Values{"message": {"  "}}, "/jobs/new")
	assert.Equal(t, http.StatusNoContent, p.Status)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	p := b.get("/healthz")
	require.Equal(t, http.StatusOK, p.Status)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(p.Body), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}
