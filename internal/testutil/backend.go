package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
)

const fakeSessionCookie = "JSESSIONID"

// FakeATS is an in-memory stand-in for the ATS REST backend, served over httptest.
// It implements cookie sessions and the endpoints the web client uses.
type FakeATS struct {
	Server *httptest.Server

	mu         sync.Mutex
	users      map[string]fakeAccount
	sessions   map[string]string
	jobs       map[int64]model.Job
	applicants map[int64]int
	categories []model.Category
	companies  []model.Company
	nextID     int64
	requests   []string

	chatAnswer     string
	failLogout     bool
	beforeOpenJobs func(r *http.Request)
}

type fakeAccount struct {
	password string
	identity domainauth.Identity
}

// Fixture accounts.
const (
	RecruiterEmail   = "recruiter@example.com"
	AdminEmail       = "admin@example.com"
	InterviewerEmail = "interviewer@example.com"
	FixturePassword  = "secret"
)

// NewFakeATS starts a fake backend seeded with accounts, categories and jobs.
// The server is closed when the test ends.
func NewFakeATS(t interface {
	TestingTB
	Cleanup(func())
}) *FakeATS {
	t.Helper()

	acme := int64(7)
	f := &FakeATS{
		users: map[string]fakeAccount{
			RecruiterEmail: {FixturePassword, domainauth.Identity{
				ID: 3, Email: RecruiterEmail, Name: "Kim Recruiter",
				CompanyID: &acme, CompanyName: "Acme",
				Roles: []domainauth.Role{domainauth.RoleRecruiter},
			}},
			AdminEmail: {FixturePassword, domainauth.Identity{
				ID: 1, Email: AdminEmail, Name: "Lee Admin",
				Roles: []domainauth.Role{domainauth.RoleAdmin},
			}},
			InterviewerEmail: {FixturePassword, domainauth.Identity{
				ID: 4, Email: InterviewerEmail, Name: "Park Interviewer",
				CompanyID: &acme, CompanyName: "Acme",
				Roles: []domainauth.Role{domainauth.RoleInterviewer},
			}},
		},
		sessions:   map[string]string{},
		jobs:       map[int64]model.Job{},
		applicants: map[int64]int{},
		categories: []model.Category{
			{ID: 1, Name: "Engineering", Children: []model.Category{
				{ID: 11, Name: "Backend", ParentID: &[]int64{1}[0]},
				{ID: 12, Name: "Frontend", ParentID: &[]int64{1}[0]},
			}},
			{ID: 2, Name: "Design"},
		},
		companies:  []model.Company{{ID: acme, Name: "Acme"}},
		nextID:     100,
		chatAnswer: "**Hello** from the assistant",
	}
	f.AddJob(model.Job{Title: "Backend engineer", Content: "Write Go", Status: model.JobStatusOpen,
		CompanyID: &acme, CompanyName: "Acme", CategoryName: "Backend", EmploymentType: model.EmploymentFullTime})
	f.AddJob(model.Job{Title: "Product designer", Content: "Design things", Status: model.JobStatusOpen,
		CompanyID: &acme, CompanyName: "Acme", CategoryName: "Design", EmploymentType: model.EmploymentContract})

	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// SetChatAnswer sets what the chatbot endpoint answers.
func (f *FakeATS) SetChatAnswer(answer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatAnswer = answer
}

// SetFailLogout makes logout answer 500.
func (f *FakeATS) SetFailLogout(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLogout = fail
}

// SetBeforeOpenJobs installs a hook run before the open listing is answered.
func (f *FakeATS) SetBeforeOpenJobs(hook func(r *http.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeOpenJobs = hook
}

// URL returns the backend base URL.
func (f *FakeATS) URL() string { return f.Server.URL }

// AddJob stores a job and returns its id.
func (f *FakeATS) AddJob(job model.Job) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job.ID == 0 {
		f.nextID++
		job.ID = f.nextID
	}
	f.jobs[job.ID] = job
	return job.ID
}

// SetApplicants makes DeleteJob refuse the job while n > 0.
func (f *FakeATS) SetApplicants(jobID int64, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applicants[jobID] = n
}

// JobByID returns a stored job.
func (f *FakeATS) JobByID(id int64) (model.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	return j, ok
}

// Requests returns "METHOD /path?query" for every request received.
func (f *FakeATS) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *FakeATS) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", f.handleMe)
	mux.HandleFunc("POST /api/auth/login", f.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", f.handleLogout)
	mux.HandleFunc("POST /api/auth/signup", f.handleSignup)
	mux.HandleFunc("GET /api/auth/exists", f.handleExists)
	mux.HandleFunc("POST /api/auth/reset-password", f.handleReset)
	mux.HandleFunc("DELETE /api/users/me", f.authed(f.handleWithdraw))
	mux.HandleFunc("PUT /api/users/{id}", f.authed(f.handleUpdateUser))
	mux.HandleFunc("GET /api/categories", f.handleCategories)
	mux.HandleFunc("GET /api/companies", f.handleCompanies)
	mux.HandleFunc("POST /api/companies", f.handleCreateCompany)
	mux.HandleFunc("GET /api/jobs/open", f.handleOpenJobs)
	mux.HandleFunc("GET /api/jobs/company/{companyId}", f.authed(f.handleCompanyJobs))
	mux.HandleFunc("POST /api/jobs/company/{companyId}/user/{userId}/category/{categoryId}", f.authed(f.handleCreateJob))
	mux.HandleFunc("GET /api/jobs/{id}", f.handleJob)
	mux.HandleFunc("PUT /api/jobs/{id}", f.authed(f.handleUpdateJob))
	mux.HandleFunc("PUT /api/jobs/{id}/status", f.authed(f.handleStatus))
	mux.HandleFunc("DELETE /api/jobs/{id}", f.authed(f.handleDeleteJob))
	mux.HandleFunc("POST /api/chatbot/ask", f.authed(f.handleAsk))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *FakeATS) current(r *http.Request) (domainauth.Identity, bool) {
	ck, err := r.Cookie(fakeSessionCookie)
	if err != nil {
		return domainauth.Identity{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.sessions[ck.Value]
	if !ok {
		return domainauth.Identity{}, false
	}
	acct, ok := f.users[email]
	return acct.identity, ok
}

func (f *FakeATS) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := f.current(r); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

func (f *FakeATS) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := f.current(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (f *FakeATS) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	acct, ok := f.users[creds.Email]
	if !ok || acct.password != creds.Password {
		f.mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	sid := uuid.NewString()
	f.sessions[sid] = creds.Email
	f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: fakeSessionCookie, Value: sid, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, acct.identity)
}

func (f *FakeATS) handleLogout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	fail := f.failLogout
	f.mu.Unlock()
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if ck, err := r.Cookie(fakeSessionCookie); err == nil {
		f.mu.Lock()
		delete(f.sessions, ck.Value)
		f.mu.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

func (f *FakeATS) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[req.Email]; exists {
		http.Error(w, "email already registered", http.StatusConflict)
		return
	}
	f.nextID++
	id := domainauth.Identity{ID: f.nextID, Email: req.Email, Name: req.Name, CompanyID: req.CompanyID,
		Roles: []domainauth.Role{req.Role}}
	for _, c := range f.companies {
		if req.CompanyID != nil && c.ID == *req.CompanyID {
			id.CompanyName = c.Name
		}
	}
	f.users[req.Email] = fakeAccount{password: req.Password, identity: id}
	writeJSON(w, http.StatusOK, id.ID)
}

func (f *FakeATS) handleExists(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	_, ok := f.users[r.URL.Query().Get("email")]
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, ok)
}

func (f *FakeATS) handleReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.users[req.Email]
	if !ok || acct.identity.Name != req.Name || acct.identity.CompanyName != req.CompanyName {
		writeMessage(w, http.StatusBadRequest, "No user matches the given details.")
		return
	}
	acct.password = req.Password
	f.users[req.Email] = acct
	writeJSON(w, http.StatusOK, model.PasswordResetResponse{Message: "Password has been reset."})
}

func (f *FakeATS) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, _ := f.current(r)
	f.mu.Lock()
	delete(f.users, id.Email)
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (f *FakeATS) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := f.current(r)
	if pathID(r, "id") != id.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	var upd model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct := f.users[id.Email]
	if upd.Name != "" {
		acct.identity.Name = upd.Name
	}
	if upd.Password != "" {
		acct.password = upd.Password
	}
	f.users[id.Email] = acct
	w.WriteHeader(http.StatusOK)
}

func (f *FakeATS) handleCategories(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.categories)
}

func (f *FakeATS) handleCompanies(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.companies)
}

func (f *FakeATS) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "Company name is required.")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.companies = append(f.companies, model.Company{ID: f.nextID, Name: req.Name})
	writeJSON(w, http.StatusOK, f.nextID)
}

func (f *FakeATS) sortedJobs(keep func(model.Job) bool) []model.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b model.Job) int { return int(b.ID - a.ID) })
	return out
}

func paginate(jobs []model.Job, r *http.Request) model.Page[model.Job] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	total := (len(jobs) + size - 1) / size
	start := min(page*size, len(jobs))
	end := min(start+size, len(jobs))
	return model.Page[model.Job]{
		Content:       jobs[start:end],
		TotalPages:    total,
		TotalElements: int64(len(jobs)),
		Number:        page,
		Size:          size,
	}
}

func (f *FakeATS) handleOpenJobs(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	hook := f.beforeOpenJobs
	f.mu.Unlock()
	if hook != nil {
		hook(r)
	}
	q := r.URL.Query()
	title := strings.ToLower(q.Get("title"))
	emp := q.Get("employmentType")
	jobs := f.sortedJobs(func(j model.Job) bool {
		return j.Status == model.JobStatusOpen &&
			(title == "" || strings.Contains(strings.ToLower(j.Title), title)) &&
			(emp == "" || string(j.EmploymentType) == emp)
	})
	writeJSON(w, http.StatusOK, paginate(jobs, r))
}

func (f *FakeATS) handleCompanyJobs(w http.ResponseWriter, r *http.Request) {
	companyID := pathID(r, "companyId")
	status := r.URL.Query().Get("status")
	jobs := f.sortedJobs(func(j model.Job) bool {
		return j.CompanyID != nil && *j.CompanyID == companyID &&
			(status == "" || status == "ALL" || string(j.Status) == status)
	})
	writeJSON(w, http.StatusOK, paginate(jobs, r))
}

func (f *FakeATS) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := f.JobByID(pathID(r, "id"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "Job posting not found.")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (f *FakeATS) applyRequest(job *model.Job, req model.JobRequest) {
	job.Title = req.Title
	job.Content = req.Content
	job.Steps = req.Steps
	job.Questions = req.Questions
	job.Location = req.Location
	job.EmploymentType = req.EmploymentType
	job.SalaryRange = req.SalaryRange
	if req.Deadline != "" {
		_ = job.Deadline.UnmarshalJSON([]byte(`"` + req.Deadline + `"`))
	}
}

func (f *FakeATS) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	companyID := pathID(r, "companyId")
	job := model.Job{Status: model.JobStatusDraft, CompanyID: &companyID, CompanyName: "Acme",
		CategoryName: fmt.Sprintf("category-%d", pathID(r, "categoryId"))}
	f.applyRequest(&job, req)
	writeJSON(w, http.StatusOK, f.AddJob(job))
}

func (f *FakeATS) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	job, ok := f.JobByID(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Job posting not found.")
		return
	}
	var req model.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.applyRequest(&job, req)
	f.AddJob(job)
	w.WriteHeader(http.StatusOK)
}

func (f *FakeATS) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	job, ok := f.JobByID(id)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Job posting not found.")
		return
	}
	var st model.JobStatus
	if err := st.UnmarshalText([]byte(r.URL.Query().Get("status"))); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	job.Status = st
	f.AddJob(job)
	w.WriteHeader(http.StatusOK)
}

func (f *FakeATS) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applicants[id] > 0 {
		// The real backend lets the foreign key violation escape as Spring's default error body.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": http.StatusInternalServerError,
			"error":  "Internal Server Error",
			"path":   r.URL.Path,
		})
		return
	}
	delete(f.jobs, id)
	w.WriteHeader(http.StatusOK)
}

func (f *FakeATS) handleAsk(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	answer := f.chatAnswer
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, model.ChatAnswer{Answer: answer})
}
