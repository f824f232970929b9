// internal/github/repos.go
//
// Repository CRUD.  Repos are created empty; the first contents PUT
// bootstraps the default branch, which keeps creation and the initial
// push a single code path in the pipeline.
package github

import (
	"context"
	"net/http"
)

// Repo is the subset of the repository resource the pipeline reads.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
	Private       bool   `json:"private"`
}

// GetRepo looks up one repository by name under the configured owner.
func (c *Client) GetRepo(ctx context.Context, name string) (*Repo, error) {
	var repo Repo
	if err := c.do(ctx, http.MethodGet, c.repoPath(name, ""), nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// CreateRepo creates a public repository under the authenticated user.
func (c *Client) CreateRepo(ctx context.Context, name, description string) (*Repo, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"private":     false,
		"auto_init":   false,
	}
	var repo Repo
	if err := c.do(ctx, http.MethodPost, "/user/repos", body, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// DeleteRepo removes a repository.  Requires the delete_repo scope.
func (c *Client) DeleteRepo(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.repoPath(name, ""), nil, nil)
}
