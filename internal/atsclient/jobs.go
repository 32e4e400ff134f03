package atsclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/minboot/ats-web/internal/domain/model"
)

// OpenJobsQuery filters the public listing.
type OpenJobsQuery struct {
	Page           model.PageRequest
	Title          string
	CategoryID     *int64
	EmploymentType model.EmploymentType
}

// Values encodes the query using the backend's zero-based page index.
// Empty filters are omitted.
func (q OpenJobsQuery) Values() url.Values {
	v := pageValues(q.Page, model.BrowsePageSize)
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	if q.CategoryID != nil {
		v.Set("categoryId", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.EmploymentType != "" {
		v.Set("employmentType", string(q.EmploymentType))
	}
	return v
}

// CompanyJobsQuery filters a company's postings. An empty Status means all statuses.
type CompanyJobsQuery struct {
	Page   model.PageRequest
	Title  string
	Status model.JobStatus
}

// Values encodes the query using the backend's zero-based page index.
func (q CompanyJobsQuery) Values() url.Values {
	v := pageValues(q.Page, model.ManagePageSize)
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

func pageValues(p model.PageRequest, defaultSize int) url.Values {
	size := p.Size
	if size <= 0 {
		size = defaultSize
	}
	return url.Values{
		"page": {strconv.Itoa(p.BackendIndex())},
		"size": {strconv.Itoa(size)},
	}
}

// OpenJobs lists published postings.
func (c *Client) OpenJobs(ctx context.Context, q OpenJobsQuery) (model.Page[model.Job], error) {
	var page model.Page[model.Job]
	err := c.Get(ctx, "/api/jobs/open", &page, WithQuery(q.Values()), WithEndpoint("jobs.open"))
	return page, err
}

// CompanyJobs lists a company's postings in every status.
func (c *Client) CompanyJobs(ctx context.Context, companyID int64, q CompanyJobsQuery) (model.Page[model.Job], error) {
	var page model.Page[model.Job]
	err := c.Get(ctx, fmt.Sprintf("/api/jobs/company/%d", companyID), &page,
		WithQuery(q.Values()), WithEndpoint("jobs.company"))
	return page, err
}

// Job fetches one posting.
func (c *Client) Job(ctx context.Context, id int64) (model.Job, error) {
	var job model.Job
	err := c.Get(ctx, fmt.Sprintf("/api/jobs/%d", id), &job, WithEndpoint("jobs.detail"))
	return job, err
}

// CreateJob creates a posting owned by the company and author and returns its id.
func (c *Client) CreateJob(
	ctx context.Context,
	companyID, userID, categoryID int64,
	req model.JobRequest,
) (int64, error) {
	var id int64
	path := fmt.Sprintf("/api/jobs/company/%d/user/%d/category/%d", companyID, userID, categoryID)
	err := c.Post(ctx, path, req, &id, WithEndpoint("jobs.create"))
	return id, err
}

// UpdateJob replaces a posting's content.
func (c *Client) UpdateJob(ctx context.Context, id int64, req model.JobRequest) error {
	return c.Put(ctx, fmt.Sprintf("/api/jobs/%d", id), req, nil, WithEndpoint("jobs.update"))
}

// ChangeJobStatus moves a posting to status.
func (c *Client) ChangeJobStatus(ctx context.Context, id int64, status model.JobStatus) error {
	return c.Put(ctx, fmt.Sprintf("/api/jobs/%d/status", id), nil, nil,
		WithQuery(url.Values{"status": {string(status)}}),
		WithEndpoint("jobs.status"))
}

// DeleteJob removes a posting. The backend refuses when applicants exist.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/api/jobs/%d", id), nil, WithEndpoint("jobs.delete"))
}
