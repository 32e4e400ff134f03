// Package model defines the backend data shapes the web client displays and forwards.
package model

import (
	"fmt"
	"strings"
	"time"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
)

// JobStatus represents the publication state of a job posting.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusDraft is a posting not yet visible to applicants.
	JobStatusDraft JobStatus = "DRAFT"
	// JobStatusOpen is a posting accepting applications.
	JobStatusOpen JobStatus = "OPEN"
	// JobStatusClosed is a posting no longer accepting applications.
	JobStatusClosed JobStatus = "CLOSED"
)

// JobStatuses lists statuses in display order.
var JobStatuses = []JobStatus{JobStatusDraft, JobStatusOpen, JobStatusClosed}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusDraft || s == JobStatusOpen || s == JobStatusClosed
}

// UnmarshalText implements encoding.TextUnmarshaler for form and query parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToUpper(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// Label returns the display name of the status.
func (s JobStatus) Label() string {
	switch s {
	case JobStatusDraft:
		return "Draft"
	case JobStatusOpen:
		return "Open"
	case JobStatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// EmploymentType is the backend's free-form employment type value.
type EmploymentType string

// Employment types the backend stores, keyed by their wire value.
const (
	EmploymentFullTime  EmploymentType = "정규직"
	EmploymentContract  EmploymentType = "계약직"
	EmploymentIntern    EmploymentType = "인턴"
	EmploymentFreelance EmploymentType = "프리랜서"
)

// EmploymentTypes lists the selectable employment types in display order.
var EmploymentTypes = []EmploymentType{
	EmploymentFullTime, EmploymentContract, EmploymentIntern, EmploymentFreelance,
}

// Label returns an English display name for the employment type.
func (e EmploymentType) Label() string {
	switch e {
	case EmploymentFullTime:
		return "Full-time"
	case EmploymentContract:
		return "Contract"
	case EmploymentIntern:
		return "Internship"
	case EmploymentFreelance:
		return "Freelance"
	default:
		return string(e)
	}
}

// QuestionType distinguishes answerable questions from informational guides.
type QuestionType string

const (
	QuestionTypeQuestion QuestionType = "QUESTION"
	QuestionTypeGuide    QuestionType = "GUIDE"
)

// Step is one stage of a posting's hiring process.
type Step struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Question is one application form item attached to a posting.
// IsRequired uses the backend's "Y"/"N" flag.
type Question struct {
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	IsRequired string       `json:"isRequired"`
	Order      int          `json:"order"`
}

// Required reports whether applicants must answer the question.
func (q Question) Required() bool { return q.IsRequired == "Y" }

// Job is a job posting as returned by the backend.
type Job struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	CreatedAt      LocalDateTime  `json:"createdAt"`
	Deadline       LocalDateTime  `json:"deadline"`
	Status         JobStatus      `json:"status"`
	CompanyID      *int64         `json:"companyId"`
	CompanyName    string         `json:"companyName"`
	CategoryName   string         `json:"categoryName"`
	Location       string         `json:"location"`
	EmploymentType EmploymentType `json:"employmentType"`
	SalaryRange    string         `json:"salaryRange"`
	Steps          []Step         `json:"steps"`
	Questions      []Question     `json:"questions"`
}

// CanEdit reports whether the viewer may modify the posting.
// When the posting carries a company id the ids must match. Postings without one fall
// back to comparing company names, which can grant access across two companies that
// share a display name.
func CanEdit(viewer *domainauth.Identity, job Job) bool {
	if viewer == nil {
		return false
	}
	if job.CompanyID != nil {
		return viewer.CompanyID != nil && *viewer.CompanyID == *job.CompanyID
	}
	return job.CompanyName != "" && viewer.CompanyName == job.CompanyName
}

// DefaultStepName is the step a new posting starts with.
const DefaultStepName = "Document screening"

// JobRequest is the body for creating or updating a posting.
// Deadline is sent as a local date-time string, empty for "always open".
type JobRequest struct {
	CompanyID      *int64         `json:"companyId,omitempty"`
	CategoryID     *int64         `json:"categoryId,omitempty"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Deadline       string         `json:"deadline,omitempty"`
	Steps          []Step         `json:"steps"`
	Questions      []Question     `json:"questions"`
	Location       string         `json:"location"`
	EmploymentType EmploymentType `json:"employmentType"`
	SalaryRange    string         `json:"salaryRange"`
}

// NewJobRequest returns a request pre-filled for a blank create form.
func NewJobRequest() JobRequest {
	return JobRequest{
		EmploymentType: EmploymentFullTime,
		Steps:          []Step{{Name: DefaultStepName, Order: 1}},
	}
}

// JobRequestFrom copies an existing posting into an edit request.
func JobRequestFrom(job Job) JobRequest {
	req := JobRequest{
		CompanyID:      job.CompanyID,
		Title:          job.Title,
		Content:        job.Content,
		Steps:          append([]Step(nil), job.Steps...),
		Questions:      append([]Question(nil), job.Questions...),
		Location:       job.Location,
		EmploymentType: job.EmploymentType,
		SalaryRange:    job.SalaryRange,
	}
	if !job.Deadline.IsZero() {
		req.Deadline = job.Deadline.Format(datetimeLocalLayout)
	}
	if req.EmploymentType == "" {
		req.EmploymentType = EmploymentFullTime
	}
	return req
}

// Normalize trims text, drops blank trailing rows, renumbers steps and questions and
// completes a minute-precision deadline with seconds.
func (r *JobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	r.SalaryRange = strings.TrimSpace(r.SalaryRange)
	r.Deadline = strings.TrimSpace(r.Deadline)
	if len(r.Deadline) == len(datetimeLocalLayout) {
		r.Deadline += ":00"
	}
	for i := range r.Steps {
		r.Steps[i].Name = strings.TrimSpace(r.Steps[i].Name)
		r.Steps[i].Order = i + 1
	}
	for i := range r.Questions {
		q := &r.Questions[i]
		q.Text = strings.TrimSpace(q.Text)
		q.Order = i + 1
		if q.Type != QuestionTypeGuide {
			q.Type = QuestionTypeQuestion
		}
		if q.IsRequired != "N" {
			q.IsRequired = "Y"
		}
	}
}

// JobRequestError describes the first invalid field of a JobRequest.
type JobRequestError struct {
	Field   string
	Message string
}

func (e *JobRequestError) Error() string { return e.Message }

// Validate checks the request the way the posting form requires.
// The category is only mandatory when creating.
func (r *JobRequest) Validate(creating bool) error {
	switch {
	case r.Title == "":
		return &JobRequestError{Field: "title", Message: "Title is required."}
	case creating && r.CategoryID == nil:
		return &JobRequestError{Field: "categoryId", Message: "Choose a category."}
	case strings.TrimSpace(r.Content) == "":
		return &JobRequestError{Field: "content", Message: "Description is required."}
	case len(r.Steps) == 0:
		return &JobRequestError{Field: "steps", Message: "Add at least one hiring step."}
	}
	for i, s := range r.Steps {
		if s.Name == "" {
			return &JobRequestError{Field: "steps", Message: fmt.Sprintf("Step %d needs a name.", i+1)}
		}
	}
	for i, q := range r.Questions {
		if q.Text == "" {
			return &JobRequestError{Field: "questions", Message: fmt.Sprintf("Question %d needs text.", i+1)}
		}
	}
	if r.Deadline != "" {
		if _, err := time.Parse(backendLayout, r.Deadline); err != nil {
			return &JobRequestError{Field: "deadline", Message: "Deadline is not a valid date and time."}
		}
	}
	return nil
}
