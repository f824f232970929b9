// internal/publish/activate.go
//
// Pages Activator.
//
// Context
// -------
// Takes a repository whose content is already pushed and walks it to a
// live site: ensure the Pages configuration serves the default branch
// root, trigger a build, wait for that build to finish, then wait for
// the public URL to answer 200.  Every wait runs through poll with its
// own wall-clock budget from config.
//
// Notes
// -----
// The builds endpoint 404s for a short window after Pages is first
// enabled, before any build record exists.  Those early 404s count as
// in-progress, not failure.  A 409 on the build trigger means a build
// is already running, which is exactly what we wanted.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/poll"
)

// pagesSource is the only configuration Vitrina publishes: default
// branch, repository root.
var pagesSource = github.PagesSource{Branch: "main", Path: "/"}

// ActivatorOptions carries the polling budgets and the optional base URL
// override used by tests.
type ActivatorOptions struct {
	PagesBaseURL   string // "" means https://<owner>.github.io
	BuildPollEvery time.Duration
	BuildTimeout   time.Duration
	LivePollEvery  time.Duration
	LiveTimeout    time.Duration
}

// Activator drives Pages enablement and waits for the site to serve.
type Activator struct {
	gh   *github.Client
	opts ActivatorOptions
	http *http.Client
}

// NewActivator wires an activator.  The liveness probe reuses the build
// timeout as its per-request cap.
func NewActivator(gh *github.Client, opts ActivatorOptions) *Activator {
	return &Activator{
		gh:   gh,
		opts: opts,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Activate brings repo's Pages site online and returns its public URL.
func (a *Activator) Activate(ctx context.Context, repo string) (string, error) {
	if err := a.ensureConfigured(ctx, repo); err != nil {
		return "", err
	}
	if err := a.triggerBuild(ctx, repo); err != nil {
		return "", err
	}
	if err := a.awaitBuild(ctx, repo); err != nil {
		return "", err
	}

	url := a.pagesURL(repo)
	if err := a.awaitLiveness(ctx, repo, url); err != nil {
		return "", err
	}
	return url, nil
}

// ensureConfigured reads the Pages config, creating or correcting it.
func (a *Activator) ensureConfigured(ctx context.Context, repo string) error {
	info, err := a.gh.GetPages(ctx, repo)
	switch {
	case err == nil:
		if info.Source == pagesSource {
			return nil
		}
		if err := a.gh.UpdatePages(ctx, repo, pagesSource); err != nil {
			return &ActivationError{Repo: repo, Err: err}
		}
		return nil

	case github.IsNotFound(err):
		createErr := a.gh.CreatePages(ctx, repo, pagesSource)
		if createErr == nil {
			return nil
		}
		// 409: enabled between our read and the create.  Converge on
		// the desired source.
		if github.IsConflict(createErr) {
			if err := a.gh.UpdatePages(ctx, repo, pagesSource); err != nil {
				return &ActivationError{Repo: repo, Err: err}
			}
			return nil
		}
		return &ActivationError{Repo: repo, Err: createErr}

	default:
		return &ActivationError{Repo: repo, Err: err}
	}
}

// triggerBuild queues a build; an already-queued build counts as done.
func (a *Activator) triggerBuild(ctx context.Context, repo string) error {
	err := a.gh.RequestPagesBuild(ctx, repo)
	if err != nil && !github.IsConflict(err) {
		return &ActivationError{Repo: repo, Err: err}
	}
	return nil
}

// awaitBuild polls the latest build until it lands in a terminal state.
func (a *Activator) awaitBuild(ctx context.Context, repo string) error {
	lastStatus := ""

	err := poll.Until(ctx, a.opts.BuildPollEvery, a.opts.BuildTimeout, func(ctx context.Context) (bool, error) {
		build, err := a.gh.LatestPagesBuild(ctx, repo)
		if err != nil {
			if github.IsNotFound(err) {
				// No build record yet; the queue lags the trigger.
				return false, nil
			}
			return false, &ActivationError{Repo: repo, LastStatus: lastStatus, Err: err}
		}

		lastStatus = build.Status
		switch strings.ToLower(build.Status) {
		case "built", "succeeded":
			return true, nil
		case "building", "queued", "pending":
			return false, nil
		default:
			msg := build.Error.Message
			if msg == "" {
				msg = "build failed"
			}
			return false, &ActivationError{Repo: repo, LastStatus: build.Status,
				Err: fmt.Errorf("pages build: %s", msg)}
		}
	})

	if errors.Is(err, poll.ErrTimeout) {
		return &ActivationError{Repo: repo, LastStatus: lastStatus,
			Err: fmt.Errorf("build did not finish within %s", a.opts.BuildTimeout)}
	}
	return err
}

// awaitLiveness polls the public URL until it serves a 200.
func (a *Activator) awaitLiveness(ctx context.Context, repo, url string) error {
	lastCode := 0

	err := poll.Until(ctx, a.opts.LivePollEvery, a.opts.LiveTimeout, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, &ActivationError{Repo: repo, Err: err}
		}
		resp, err := a.http.Do(req)
		if err != nil {
			// CDN propagation shows up as transient transport errors
			// too; within budget they are all "not yet".
			zap.S().Debugw("liveness probe failed", "url", url, "err", err)
			return false, nil
		}
		resp.Body.Close()

		lastCode = resp.StatusCode
		return resp.StatusCode == http.StatusOK, nil
	})

	if errors.Is(err, poll.ErrTimeout) {
		return &ActivationError{Repo: repo,
			LastStatus: fmt.Sprintf("HTTP %d", lastCode),
			Err:        fmt.Errorf("site at %s not serving within %s", url, a.opts.LiveTimeout)}
	}
	return err
}

// pagesURL composes the public URL for a repo's Pages site.
func (a *Activator) pagesURL(repo string) string {
	if a.opts.PagesBaseURL != "" {
		return strings.TrimRight(a.opts.PagesBaseURL, "/") + "/" + repo + "/"
	}
	return "https://" + a.gh.Owner() + ".github.io/" + repo + "/"
}
