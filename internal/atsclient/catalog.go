package atsclient

import (
	"context"

	"github.com/minboot/ats-web/internal/domain/model"
)

// Categories returns the category tree.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var tree []model.Category
	err := c.Get(ctx, "/api/categories", &tree, WithEndpoint("categories.list"))
	return tree, err
}

// Companies lists registered companies.
func (c *Client) Companies(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := c.Get(ctx, "/api/companies", &companies, WithEndpoint("companies.list"))
	return companies, err
}

// CreateCompany registers a company and returns its id.
func (c *Client) CreateCompany(ctx context.Context, name string) (int64, error) {
	var id int64
	err := c.Post(ctx, "/api/companies", model.CreateCompanyRequest{Name: name}, &id,
		WithEndpoint("companies.create"))
	return id, err
}
