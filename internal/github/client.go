// internal/github/client.go
//
// Minimal GitHub REST v3 client covering exactly the surface the publish
// pipeline needs: repositories, file contents, and Pages.  Kept
// deliberately thin; retry, polling, and "409 means someone got there
// first" interpretations live in internal/publish, which owns the
// workflow semantics.
//
// The base URL is injectable so tests can stand up an httptest server
// and drive the pipeline against scripted responses.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	apiVersion        = "2022-11-28"
)

// Client issues authenticated requests against one GitHub account.
type Client struct {
	api   string
	token string
	owner string
	http  *http.Client
}

// New builds a client for the given account.  baseURL may be empty, in
// which case the public endpoint is used.
func New(baseURL, token, owner string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Client{
		api:   strings.TrimRight(baseURL, "/"),
		token: token,
		owner: owner,
		http:  &http.Client{Timeout: timeout},
	}
}

// Owner returns the account name the client was configured with.
func (c *Client) Owner() string { return c.owner }

// Verify confirms the token is valid and belongs to the configured owner.
// Returns the authenticated login.
func (c *Client) Verify(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return "", err
	}
	return user.Login, nil
}

// do runs one request and decodes the response into out (when non-nil).
// Non-2xx responses come back as *APIError so callers can branch on the
// status code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("github: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.api+path, reader)
	if err != nil {
		return fmt.Errorf("github: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decode %s %s: %w", method, path, err)
	}
	return nil
}

// repoPath joins the owner-qualified repository prefix with a suffix.
func (c *Client) repoPath(repo, suffix string) string {
	return "/repos/" + c.owner + "/" + repo + suffix
}
