// internal/publish/pipeline.go
//
// Publish pipeline orchestration.
//
// Context
// -------
// One Publish call takes a site row all the way to a live page: localize
// remote images, render the bundle, reconcile the hosting repository,
// push content, activate Pages, persist the outcome.  The panel starts
// it on a background goroutine with a detached context so a closed
// browser tab never abandons a half-pushed site, and answers 202; the
// browser polls Status until done or failed.
//
// Concurrency
// -----------
// Publishes of different sites run in parallel.  A second publish of the
// same site is rejected with ErrPublishInFlight by the state tracker; a
// singleflight group backs that up for callers that invoke Run directly
// (vitrinactl and the panel sharing a process, for instance).
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/vitrina/internal/assets"
	"github.com/yanizio/vitrina/internal/config"
	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/metrics"
	"github.com/yanizio/vitrina/internal/render"
	"github.com/yanizio/vitrina/internal/site"
)

// runBudget caps one whole background publish: every remote poll already
// has its own budget, this is the backstop above all of them.
const runBudget = 15 * time.Minute

// Result is what a successful publish produced.
type Result struct {
	RepoName string
	URL      string
	Warning  string
}

// Pipeline wires every publish stage together.
type Pipeline struct {
	db        *sqlx.DB
	localizer *assets.Localizer
	renderer  *render.Renderer
	rec       *Reconciler
	pusher    *Pusher
	act       *Activator

	group   singleflight.Group
	tracker *tracker
	log     *zap.SugaredLogger
}

// New builds the pipeline and validates the GitHub credential up front,
// distinguishing "not configured" from "rejected" from "wrong account".
// All three are ConfigError: fatal at boot, caller-fixable.
func New(ctx context.Context, cfg *config.Config, db *sqlx.DB, localizer *assets.Localizer, renderer *render.Renderer, gh *github.Client) (*Pipeline, error) {
	if cfg.GitHub.Token == "" || cfg.GitHub.Owner == "" {
		return nil, &ConfigError{Reason: "github token and owner must be configured"}
	}

	login, err := gh.Verify(ctx)
	if err != nil {
		return nil, &ConfigError{Reason: "github credential rejected", Err: err}
	}
	if !strings.EqualFold(login, cfg.GitHub.Owner) {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("token belongs to %q, configured owner is %q", login, cfg.GitHub.Owner),
		}
	}

	return &Pipeline{
		db:        db,
		localizer: localizer,
		renderer:  renderer,
		rec:       NewReconciler(gh, cfg.Publish.RepoVerifyTries, cfg.Publish.RepoVerifyDelay),
		pusher:    NewPusher(gh, localizer.UploadsDir()),
		act: NewActivator(gh, ActivatorOptions{
			PagesBaseURL:   cfg.GitHub.PagesBaseURL,
			BuildPollEvery: cfg.Publish.BuildPollEvery,
			BuildTimeout:   cfg.Publish.BuildTimeout,
			LivePollEvery:  cfg.Publish.LivenessPollEvery,
			LiveTimeout:    cfg.Publish.LivenessTimeout,
		}),
		tracker: newTracker(),
		log:     zap.S().Named("publish"),
	}, nil
}

// Start launches a background publish and returns immediately.  The
// goroutine gets a fresh context: the triggering request's lifetime must
// not bound the publish.
func (p *Pipeline) Start(siteID uint64) error {
	if !p.tracker.begin(siteID) {
		return ErrPublishInFlight
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runBudget)
		defer cancel()

		res, err := p.Run(ctx, siteID)
		if err != nil {
			p.tracker.fail(siteID, err)
			return
		}
		p.tracker.succeed(siteID, res.URL, res.Warning)
	}()
	return nil
}

// Status reports the current publish state of a site.
func (p *Pipeline) Status(siteID uint64) State {
	return p.tracker.get(siteID)
}

// DeleteRemote removes a site's hosting repository, best effort.  Used
// by the panel's delete flow; a missing repo is fine.
func (p *Pipeline) DeleteRemote(ctx context.Context, rec *site.Record) error {
	name := rec.RepoName()
	if name == "" {
		return nil
	}
	return p.rec.DeleteRepository(ctx, name)
}

// Run executes one publish synchronously.  Safe to call directly; the
// singleflight group collapses a concurrent duplicate of the same site.
func (p *Pipeline) Run(ctx context.Context, siteID uint64) (*Result, error) {
	key := strconv.FormatUint(siteID, 10)
	v, err, _ := p.group.Do(key, func() (any, error) {
		return p.run(ctx, siteID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (p *Pipeline) run(ctx context.Context, siteID uint64) (res *Result, err error) {
	start := time.Now()
	metrics.PublishTotal.Inc()

	stage := "config"
	defer func() {
		if err != nil {
			metrics.PublishErrorsTotal.WithLabelValues(stage).Inc()
			p.log.Errorw("publish failed", "site", siteID, "stage", stage, "err", err)
			return
		}
		metrics.PublishDuration.Observe(time.Since(start).Seconds())
		p.log.Infow("publish succeeded", "site", siteID,
			"repo", res.RepoName, "url", res.URL, "took", time.Since(start))
	}()

	rec, err := site.ByID(ctx, p.db, siteID)
	if err != nil {
		return nil, fmt.Errorf("load site %d: %w", siteID, err)
	}

	// Localization rewrites the record in memory so the rendered pages,
	// the uploaded assets, and the persisted refs all agree.  It never
	// fails a publish.
	assetFiles := p.localizeRecord(ctx, rec)

	stage = "render"
	bundle, err := p.renderer.Render(rec)
	if err != nil {
		return nil, fmt.Errorf("render site %d: %w", siteID, err)
	}

	stage = "repository"
	desired := rec.RepoName()
	firstPublish := desired == ""
	if firstPublish {
		desired = site.DesiredRepoName(rec.Name, rec.ID)
	}
	repoName, existed, warning, err := p.rec.EnsureRepository(ctx, desired, rec.Description)
	if err != nil {
		return nil, err
	}
	if firstPublish {
		if err = site.SetRepoName(ctx, p.db, rec.ID, repoName); err != nil {
			return nil, fmt.Errorf("persist repo name for site %d: %w", siteID, err)
		}
	}
	p.log.Infow("repository ready", "site", siteID, "repo", repoName, "existed", existed)

	stage = "push"
	domain := customDomain(rec)
	if domain != "" {
		if err = p.pusher.PushFile(ctx, repoName, "CNAME", []byte(domain+"\n")); err != nil {
			return nil, err
		}
	}
	if err = p.pusher.PushBundle(ctx, repoName, bundle, assetFiles); err != nil {
		return nil, err
	}

	stage = "activate"
	url, err := p.act.Activate(ctx, repoName)
	if err != nil {
		return nil, err
	}
	if domain != "" {
		url = "https://" + domain + "/"
	}

	stage = "persist"
	if err = site.MarkPublished(ctx, p.db, rec.ID, url); err != nil {
		return nil, fmt.Errorf("mark site %d published: %w", siteID, err)
	}
	if err = site.UpdateAssetRefs(ctx, p.db, rec); err != nil {
		return nil, fmt.Errorf("persist asset refs for site %d: %w", siteID, err)
	}

	return &Result{RepoName: repoName, URL: url, Warning: warning}, nil
}

// localizeRecord runs every image-bearing field through the localizer,
// rewrites the record in place, and returns the deduplicated set of
// local asset filenames that exist on disk and must be uploaded.
func (p *Pipeline) localizeRecord(ctx context.Context, rec *site.Record) []string {
	localize := func(ref string) string {
		out, _ := p.localizer.Localize(ctx, ref)
		return out
	}

	rec.HeroImage = localize(rec.HeroImage)
	rec.AboutImage = localize(rec.AboutImage)
	rec.LogoURL = localize(rec.LogoURL)

	products := rec.Products()
	for i := range products {
		products[i].Image = localize(products[i].Image)
	}
	if len(products) > 0 {
		rec.ProductsJSON = encodeList(products)
	}

	gallery := rec.Gallery()
	for i := range gallery {
		gallery[i] = localize(gallery[i])
	}
	if len(gallery) > 0 {
		rec.GalleryJSON = encodeList(gallery)
	}

	supporters := rec.Supporters()
	for i := range supporters {
		supporters[i].Logo = localize(supporters[i].Logo)
	}
	if len(supporters) > 0 {
		rec.SupportersJSON = encodeList(supporters)
	}

	seen := make(map[string]struct{})
	collect := func(ref string) {
		name := strings.TrimPrefix(ref, "images/")
		if name == ref || name == "" {
			return
		}
		if _, err := os.Stat(filepath.Join(p.localizer.UploadsDir(), name)); err != nil {
			return
		}
		seen[name] = struct{}{}
	}

	collect(rec.HeroImage)
	collect(rec.AboutImage)
	collect(rec.LogoURL)
	for _, pr := range products {
		collect(pr.Image)
	}
	for _, g := range gallery {
		collect(g)
	}
	for _, s := range supporters {
		collect(s.Logo)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// encodeList re-serializes a decoded JSON column.  Marshal cannot fail
// for these concrete types.
func encodeList[T any](list []T) string {
	raw, _ := json.Marshal(list)
	return string(raw)
}

func customDomain(rec *site.Record) string {
	if rec.CustomDomain == nil {
		return ""
	}
	return strings.TrimSpace(*rec.CustomDomain)
}
