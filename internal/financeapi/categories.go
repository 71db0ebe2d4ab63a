package financeapi

import (
	"context"
	"net/http"
	"net/url"

	"finweb/internal/core"
)

const (
	opListCategories = "load categories"
	opGetCategory    = "load category"
	opCreateCategory = "create category"
	opUpdateCategory = "update category"
	opDeleteCategory = "delete category"
)

func categoryPath(id string) string {
	return "/categories/" + url.PathEscape(id)
}

// ListCategories returns the categories of the token's user.
func (c *Client) ListCategories(ctx context.Context, token string) ([]core.Category, error) {
	var resp []categoryResponse
	if err := c.do(ctx, token, opListCategories, http.MethodGet, "/categories", nil, &resp); err != nil {
		return nil, err
	}
	categories := make([]core.Category, 0, len(resp))
	for _, cat := range resp {
		categories = append(categories, cat.toCore())
	}
	return categories, nil
}

// GetCategory fetches one category.
func (c *Client) GetCategory(ctx context.Context, token, id string) (core.Category, error) {
	var resp categoryResponse
	if err := c.do(ctx, token, opGetCategory, http.MethodGet, categoryPath(id), nil, &resp); err != nil {
		return core.Category{}, err
	}
	cat := resp.toCore()
	if cat.ID == "" {
		cat.ID = id
	}
	return cat, nil
}

// CreateCategory creates a category owned by the token's user.
func (c *Client) CreateCategory(ctx context.Context, token string, in core.CategoryInput) (core.Category, error) {
	var resp categoryResponse
	if err := c.do(ctx, token, opCreateCategory, http.MethodPost, "/categories", newCategoryRequest(in), &resp); err != nil {
		return core.Category{}, err
	}
	return resp.toCore(), nil
}

// UpdateCategory replaces the category's name and color.
func (c *Client) UpdateCategory(ctx context.Context, token, id string, in core.CategoryInput) error {
	req := newCategoryRequest(in)
	req.ID = idValue(id)
	return c.do(ctx, token, opUpdateCategory, http.MethodPut, categoryPath(id), req, nil)
}

// DeleteCategory removes the category. It fails when the category is still
// referenced by a transaction.
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.do(ctx, token, opDeleteCategory, http.MethodDelete, categoryPath(id), nil, nil)
}
