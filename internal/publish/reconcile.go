// internal/publish/reconcile.go
//
// Repository Reconciler.
//
// Context
// -------
// Maps a site to exactly one hosting repository.  Lookup comes first and
// an existing repository is never mutated, so republishing is a no-op
// here.  Creation is followed by a read-back loop because the remote
// API is eventually consistent: a repository can 404 on GET for several
// seconds after its creation call succeeded.  Exhausting that loop is a
// warning, not a failure; the subsequent content push will surface a
// real problem if one exists.
package publish

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/poll"
)

// Reconciler ensures hosting repositories exist.
type Reconciler struct {
	gh          *github.Client
	verifyTries int
	verifyDelay time.Duration
}

// NewReconciler wires the reconciler with its propagation budget.
func NewReconciler(gh *github.Client, verifyTries int, verifyDelay time.Duration) *Reconciler {
	return &Reconciler{gh: gh, verifyTries: verifyTries, verifyDelay: verifyDelay}
}

// EnsureRepository resolves the repository for a site: returns the final
// name, whether it already existed, and a non-empty warning when the
// post-create read-back never saw the new repository.
func (r *Reconciler) EnsureRepository(ctx context.Context, name, description string) (string, bool, string, error) {
	if repo, err := r.gh.GetRepo(ctx, name); err == nil {
		return repo.Name, true, "", nil
	} else if !github.IsNotFound(err) {
		return "", false, "", &RepoError{Repo: name, Err: err}
	}

	created, err := r.gh.CreateRepo(ctx, name, description)
	if err != nil {
		// A concurrent creator may have won the race; "name already
		// exists" comes back as 422 (or 409 on some code paths).
		if github.IsUnprocessable(err) || github.IsConflict(err) {
			repo, lookupErr := r.gh.GetRepo(ctx, name)
			if lookupErr != nil {
				return "", false, "", &RepoError{Repo: name, Err: lookupErr}
			}
			return repo.Name, true, "", nil
		}
		return "", false, "", &RepoError{Repo: name, Err: err}
	}

	verified, err := poll.Tries(ctx, r.verifyTries, r.verifyDelay, func(ctx context.Context) (bool, error) {
		if _, lookupErr := r.gh.GetRepo(ctx, created.Name); lookupErr == nil {
			return true, nil
		}
		// 404 and transient failures alike: keep trying within budget.
		return false, nil
	})
	if err != nil {
		return "", false, "", &RepoError{Repo: created.Name, Err: err}
	}

	warning := ""
	if !verified {
		warning = "repository created but not yet visible; continuing"
		zap.S().Warnw("repository verification exhausted",
			"repo", created.Name, "tries", r.verifyTries)
	}
	return created.Name, false, warning, nil
}

// DeleteRepository removes a site's repository.  Best effort: a missing
// repository is already the desired state.
func (r *Reconciler) DeleteRepository(ctx context.Context, name string) error {
	err := r.gh.DeleteRepo(ctx, name)
	if err != nil && !github.IsNotFound(err) {
		return &RepoError{Repo: name, Err: err}
	}
	return nil
}
