// internal/github/contents.go
//
// File contents endpoints.  The contents API is how every byte reaches
// the repository: pages, stylesheets, scripts, images, and the CNAME
// file all go through PutContent.  Updating an existing path requires
// its current blob SHA, so GetContent exists to fetch that first.
package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// Content identifies an existing file: its path and current blob SHA.
type Content struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

// PutContentInput describes a create-or-update of one file.  SHA must be
// empty when creating and must match the current blob when updating;
// GitHub rejects mismatches with 409 or 422 depending on the race.
type PutContentInput struct {
	Message string
	Content []byte
	SHA     string
	Branch  string
}

// GetContent fetches the metadata of a single file.  Returns a 404
// APIError when the path does not exist on the branch.
func (c *Client) GetContent(ctx context.Context, repo, path string) (*Content, error) {
	var content Content
	err := c.do(ctx, http.MethodGet, c.contentPath(repo, path), nil, &content)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// PutContent creates or updates one file.
func (c *Client) PutContent(ctx context.Context, repo, path string, in PutContentInput) error {
	body := map[string]any{
		"message": in.Message,
		"content": base64.StdEncoding.EncodeToString(in.Content),
	}
	if in.SHA != "" {
		body["sha"] = in.SHA
	}
	if in.Branch != "" {
		body["branch"] = in.Branch
	}
	return c.do(ctx, http.MethodPut, c.contentPath(repo, path), body, nil)
}

// contentPath escapes each path segment; asset filenames are hashes and
// safe, but user-named templates may carry anything.
func (c *Client) contentPath(repo, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return c.repoPath(repo, "/contents/"+strings.Join(segments, "/"))
}
