// internal/publish/content.go
//
// Content Publisher.
//
// Context
// -------
// Pushes a rendered bundle plus its localized assets into the hosting
// repository through the contents API, one file per commit.  The first
// PUT into an empty repository bootstraps the default branch, so fresh
// and existing repositories share one code path.
//
// Update safety
// -------------
// Updating a file needs its current blob SHA.  Between our read and our
// write another publisher may land a commit, which the API rejects with
// a conflict.  We re-read exactly once and retry; a second rejection is
// a real failure, not a race worth chasing.  Symmetrically, creating a
// file that appeared since our read falls back to a single update.
package publish

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/render"
)

// Pusher uploads bundles and assets to hosting repositories.
type Pusher struct {
	gh         *github.Client
	uploadsDir string
}

// NewPusher wires the pusher with the directory localized assets live in.
func NewPusher(gh *github.Client, uploadsDir string) *Pusher {
	return &Pusher{gh: gh, uploadsDir: uploadsDir}
}

// PushBundle writes every bundle file and every named asset to the
// repository.  assetFiles are bare filenames under the uploads dir,
// already deduplicated; each lands at images/<name>.  The push aborts on
// the first unrecoverable file error so a broken publish never leaves a
// half-true "succeeded" impression.
func (p *Pusher) PushBundle(ctx context.Context, repo string, bundle render.Bundle, assetFiles []string) error {
	// Deterministic order keeps commit history readable and tests exact.
	paths := make([]string, 0, len(bundle))
	for path := range bundle {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := p.PushFile(ctx, repo, path, bundle[path]); err != nil {
			return err
		}
	}

	for _, name := range assetFiles {
		data, err := os.ReadFile(filepath.Join(p.uploadsDir, name))
		if err != nil {
			// The record can reference an images/ file that was uploaded
			// through the panel and later removed on disk.  Skip it; the
			// site still renders, just without that image.
			zap.S().Warnw("asset missing from uploads dir, skipping",
				"repo", repo, "asset", name, "err", err)
			continue
		}
		if err := p.PushFile(ctx, repo, "images/"+name, data); err != nil {
			return err
		}
	}
	return nil
}

// PushFile creates or updates one file.  Also used directly for the
// CNAME file when a site has a custom domain.
func (p *Pusher) PushFile(ctx context.Context, repo, path string, content []byte) error {
	existing, err := p.gh.GetContent(ctx, repo, path)
	switch {
	case err == nil:
		return p.update(ctx, repo, path, content, existing.SHA)
	case github.IsNotFound(err):
		return p.create(ctx, repo, path, content)
	default:
		return &PushError{Repo: repo, Path: path, Err: err}
	}
}

func (p *Pusher) update(ctx context.Context, repo, path string, content []byte, sha string) error {
	err := p.gh.PutContent(ctx, repo, path, github.PutContentInput{
		Message: "Update " + path,
		Content: content,
		SHA:     sha,
	})
	if err == nil {
		return nil
	}
	if !github.IsConflict(err) && !github.IsUnprocessable(err) {
		return &PushError{Repo: repo, Path: path, Err: err}
	}

	// Stale SHA: one re-read, one retry.
	fresh, readErr := p.gh.GetContent(ctx, repo, path)
	if readErr != nil {
		return &PushError{Repo: repo, Path: path, Err: readErr}
	}
	if err := p.gh.PutContent(ctx, repo, path, github.PutContentInput{
		Message: "Update " + path,
		Content: content,
		SHA:     fresh.SHA,
	}); err != nil {
		return &PushError{Repo: repo, Path: path, Err: err}
	}
	return nil
}

func (p *Pusher) create(ctx context.Context, repo, path string, content []byte) error {
	err := p.gh.PutContent(ctx, repo, path, github.PutContentInput{
		Message: "Add " + path,
		Content: content,
	})
	if err == nil {
		return nil
	}
	if !github.IsConflict(err) && !github.IsUnprocessable(err) {
		return &PushError{Repo: repo, Path: path, Err: err}
	}

	// The file appeared between our read and this write.  Fetch its SHA
	// and update instead.
	fresh, readErr := p.gh.GetContent(ctx, repo, path)
	if readErr != nil {
		return &PushError{Repo: repo, Path: path, Err: readErr}
	}
	if err := p.gh.PutContent(ctx, repo, path, github.PutContentInput{
		Message: "Update " + path,
		Content: content,
		SHA:     fresh.SHA,
	}); err != nil {
		return &PushError{Repo: repo, Path: path, Err: err}
	}
	return nil
}
