// internal/github/pages.go
//
// GitHub Pages endpoints: site configuration, build triggering, and
// build status.  The API is eventually consistent right after a repo is
// created, so callers should expect 404s here that clear up on retry;
// that interpretation belongs to internal/publish.
package github

import (
	"context"
	"net/http"
)

// PagesSource is the branch and directory Pages serves from.
type PagesSource struct {
	Branch string `json:"branch"`
	Path   string `json:"path"`
}

// PagesInfo is the Pages configuration of one repository.
type PagesInfo struct {
	URL    string      `json:"html_url"`
	Status string      `json:"status"`
	CNAME  string      `json:"cname"`
	Source PagesSource `json:"source"`
}

// PagesBuild reports one build.  Status values observed from the API:
// "queued", "building", "built", "errored".
type PagesBuild struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetPages fetches the Pages configuration.  404 means Pages has never
// been enabled for the repository.
func (c *Client) GetPages(ctx context.Context, repo string) (*PagesInfo, error) {
	var info PagesInfo
	if err := c.do(ctx, http.MethodGet, c.repoPath(repo, "/pages"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CreatePages enables Pages with the given source.  409 means it was
// already enabled.
func (c *Client) CreatePages(ctx context.Context, repo string, source PagesSource) error {
	body := map[string]any{"source": source}
	return c.do(ctx, http.MethodPost, c.repoPath(repo, "/pages"), body, nil)
}

// UpdatePages changes the source of an already-enabled Pages site.
func (c *Client) UpdatePages(ctx context.Context, repo string, source PagesSource) error {
	body := map[string]any{"source": source}
	return c.do(ctx, http.MethodPut, c.repoPath(repo, "/pages"), body, nil)
}

// RequestPagesBuild asks Pages to rebuild from the latest commit.  201
// queues a build; 409 means one is already in flight.
func (c *Client) RequestPagesBuild(ctx context.Context, repo string) error {
	return c.do(ctx, http.MethodPost, c.repoPath(repo, "/pages/builds"), nil, nil)
}

// LatestPagesBuild reports the most recent build.  404 right after
// enabling Pages means no build has been recorded yet.
func (c *Client) LatestPagesBuild(ctx context.Context, repo string) (*PagesBuild, error) {
	var build PagesBuild
	if err := c.do(ctx, http.MethodGet, c.repoPath(repo, "/pages/builds/latest"), nil, &build); err != nil {
		return nil, err
	}
	return &build, nil
}
