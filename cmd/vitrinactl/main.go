// cmd/vitrinactl/main.go
//
// Vitrina admin CLI: batch republish, seed import, and asset
// localization sweeps, sharing the server's configuration and packages
// so behavior matches the panel exactly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/vitrina/internal/assets"
	"github.com/yanizio/vitrina/internal/config"
	"github.com/yanizio/vitrina/internal/database"
	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/logger"
	"github.com/yanizio/vitrina/internal/publish"
	"github.com/yanizio/vitrina/internal/render"
	"github.com/yanizio/vitrina/internal/site"
	"github.com/yanizio/vitrina/internal/vault"
)

var cli struct {
	Republish RepublishCmd `cmd:"" help:"Publish one site, or every site with --all."`
	Import    ImportCmd    `cmd:"" help:"Import sites from a JSON seed file."`
	Sweep     SweepCmd     `cmd:"" help:"Localize remote image references without publishing."`
	Verify    VerifyCmd    `cmd:"" help:"Check the configured GitHub credential."`
}

// runtime bundles what every command needs once the config is loaded.
type runtime struct {
	ctx context.Context
	cfg *config.Config
	db  *sqlx.DB
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var vaultCli *vault.Client
	if strings.HasPrefix(cfg.GitHub.Token, "vault:") {
		if vaultCli, err = vault.New(ctx, nil); err != nil {
			return nil, fmt.Errorf("vault client: %w", err)
		}
	}
	if err := config.ResolveSecrets(ctx, cfg, vaultCli); err != nil {
		return nil, fmt.Errorf("resolve secrets: %w", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return &runtime{ctx: ctx, cfg: cfg, db: db}, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
}

// pipeline builds the same publish pipeline the web panel uses.
func (rt *runtime) pipeline() (*publish.Pipeline, error) {
	localizer, err := assets.New(rt.cfg.Paths.Uploads, rt.cfg.Publish.AssetTimeout)
	if err != nil {
		return nil, err
	}
	registry, err := render.LoadRegistry(filepath.Join(rt.cfg.Paths.Root, "conf", "models.yaml"))
	if err != nil {
		return nil, err
	}
	renderer := render.NewRenderer(rt.cfg.Paths.Templates, registry, rt.cfg.Stats.PublicBaseURL)
	gh := github.New(rt.cfg.GitHub.APIBaseURL, rt.cfg.GitHub.Token, rt.cfg.GitHub.Owner, rt.cfg.Publish.HTTPTimeout)
	return publish.New(rt.ctx, rt.cfg, rt.db, localizer, renderer, gh)
}

// RepublishCmd re-runs the publish pipeline for one or all sites.
type RepublishCmd struct {
	ID  uint64 `arg:"" optional:"" help:"Site ID to publish."`
	All bool   `help:"Publish every site in the database."`
}

func (c *RepublishCmd) Run(rt *runtime) error {
	if !c.All && c.ID == 0 {
		return fmt.Errorf("pass a site ID or --all")
	}

	p, err := rt.pipeline()
	if err != nil {
		return err
	}

	var ids []uint64
	if c.All {
		records, err := site.All(rt.ctx, rt.db)
		if err != nil {
			return err
		}
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
	} else {
		ids = []uint64{c.ID}
	}

	failed := 0
	for _, id := range ids {
		res, err := p.Run(rt.ctx, id)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "site %d: %v\n", id, err)
			continue
		}
		fmt.Printf("site %d → %s\n", id, res.URL)
		if res.Warning != "" {
			fmt.Printf("site %d: warning: %s\n", id, res.Warning)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d publishes failed", failed, len(ids))
	}
	return nil
}

// seedSite is one entry of an import file.
type seedSite struct {
	Name           string          `json:"name"`
	ModelType      string          `json:"model_type"`
	Description    string          `json:"description"`
	HeroTitle      string          `json:"hero_title"`
	HeroSubtitle   string          `json:"hero_subtitle"`
	HeroImage      string          `json:"hero_image"`
	AboutText      string          `json:"about_text"`
	AboutImage     string          `json:"about_image"`
	ContactEmail   string          `json:"contact_email"`
	ContactPhone   string          `json:"contact_phone"`
	ContactAddress string          `json:"contact_address"`
	WhatsappNumber string          `json:"whatsapp_number"`
	FacebookURL    string          `json:"facebook_url"`
	InstagramURL   string          `json:"instagram_url"`
	TiktokURL      string          `json:"tiktok_url"`
	LogoURL        string          `json:"logo_url"`
	PrimaryColor   string          `json:"primary_color"`
	SecondaryColor string          `json:"secondary_color"`
	Products       json.RawMessage `json:"products"`
	Gallery        json.RawMessage `json:"gallery"`
	Supporters     json.RawMessage `json:"supporters"`
	CustomDomain   string          `json:"custom_domain"`
}

// ImportCmd loads a JSON array of sites into the database.
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON seed file."`
}

func (c *ImportCmd) Run(rt *runtime) error {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	var seeds []seedSite
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return fmt.Errorf("parse %s: %w", c.File, err)
	}

	for i, s := range seeds {
		if s.Name == "" || s.ModelType == "" {
			return fmt.Errorf("entry %d: name and model_type are required", i)
		}
		rec := &site.Record{
			Name:           s.Name,
			ModelType:      s.ModelType,
			Description:    s.Description,
			HeroTitle:      s.HeroTitle,
			HeroSubtitle:   s.HeroSubtitle,
			HeroImage:      s.HeroImage,
			AboutText:      s.AboutText,
			AboutImage:     s.AboutImage,
			ContactEmail:   s.ContactEmail,
			ContactPhone:   s.ContactPhone,
			ContactAddress: s.ContactAddress,
			WhatsappNumber: s.WhatsappNumber,
			FacebookURL:    s.FacebookURL,
			InstagramURL:   s.InstagramURL,
			TiktokURL:      s.TiktokURL,
			LogoURL:        s.LogoURL,
			PrimaryColor:   s.PrimaryColor,
			SecondaryColor: s.SecondaryColor,
			ProductsJSON:   string(s.Products),
			GalleryJSON:    string(s.Gallery),
			SupportersJSON: string(s.Supporters),
		}
		if d := strings.TrimSpace(s.CustomDomain); d != "" {
			rec.CustomDomain = &d
		}

		id, err := site.Insert(rt.ctx, rt.db, rec)
		if err != nil {
			return fmt.Errorf("insert %q: %w", s.Name, err)
		}
		fmt.Printf("imported %q as site %d\n", s.Name, id)
	}
	return nil
}

// SweepCmd downloads every remote image reference in the database into
// the uploads dir and persists the rewritten references, so the next
// publish of each site pushes local copies.
type SweepCmd struct {
	DryRun bool `help:"Report what would be localized without touching anything."`
}

func (c *SweepCmd) Run(rt *runtime) error {
	localizer, err := assets.New(rt.cfg.Paths.Uploads, rt.cfg.Publish.AssetTimeout)
	if err != nil {
		return err
	}

	records, err := site.All(rt.ctx, rt.db)
	if err != nil {
		return err
	}

	for i := range records {
		rec := &records[i]
		changed := sweepRecord(rt.ctx, localizer, rec, c.DryRun)
		if changed == 0 {
			continue
		}
		if c.DryRun {
			fmt.Printf("site %d (%s): %d reference(s) would be localized\n", rec.ID, rec.Name, changed)
			continue
		}
		if err := site.UpdateAssetRefs(rt.ctx, rt.db, rec); err != nil {
			return fmt.Errorf("persist refs for site %d: %w", rec.ID, err)
		}
		fmt.Printf("site %d (%s): %d reference(s) localized\n", rec.ID, rec.Name, changed)
	}
	return nil
}

// sweepRecord localizes every image field of one record in place and
// returns how many references changed (or would change, for dry runs).
func sweepRecord(ctx context.Context, localizer *assets.Localizer, rec *site.Record, dryRun bool) int {
	changed := 0
	apply := func(ref string) string {
		if dryRun {
			if predicted := assets.CanonicalName(ref); predicted != ref && assets.IsRemote(ref) {
				changed++
			}
			return ref
		}
		out, _ := localizer.Localize(ctx, ref)
		if out != ref {
			changed++
		}
		return out
	}

	rec.HeroImage = apply(rec.HeroImage)
	rec.AboutImage = apply(rec.AboutImage)
	rec.LogoURL = apply(rec.LogoURL)

	products := rec.Products()
	for i := range products {
		products[i].Image = apply(products[i].Image)
	}
	if len(products) > 0 && !dryRun {
		raw, _ := json.Marshal(products)
		rec.ProductsJSON = string(raw)
	}

	gallery := rec.Gallery()
	for i := range gallery {
		gallery[i] = apply(gallery[i])
	}
	if len(gallery) > 0 && !dryRun {
		raw, _ := json.Marshal(gallery)
		rec.GalleryJSON = string(raw)
	}

	supporters := rec.Supporters()
	for i := range supporters {
		supporters[i].Logo = apply(supporters[i].Logo)
	}
	if len(supporters) > 0 && !dryRun {
		raw, _ := json.Marshal(supporters)
		rec.SupportersJSON = string(raw)
	}

	return changed
}

// VerifyCmd checks the GitHub credential the way the pipeline does at
// boot and reports the authenticated account.
type VerifyCmd struct{}

func (c *VerifyCmd) Run(rt *runtime) error {
	if rt.cfg.GitHub.Token == "" || rt.cfg.GitHub.Owner == "" {
		return fmt.Errorf("github token and owner must be configured")
	}

	gh := github.New(rt.cfg.GitHub.APIBaseURL, rt.cfg.GitHub.Token, rt.cfg.GitHub.Owner, rt.cfg.Publish.HTTPTimeout)
	ctx, cancel := context.WithTimeout(rt.ctx, 15*time.Second)
	defer cancel()

	login, err := gh.Verify(ctx)
	if err != nil {
		return fmt.Errorf("credential rejected: %w", err)
	}
	if !strings.EqualFold(login, rt.cfg.GitHub.Owner) {
		return fmt.Errorf("token belongs to %q, configured owner is %q", login, rt.cfg.GitHub.Owner)
	}
	fmt.Printf("ok: authenticated as %s\n", login)
	return nil
}

func main() {
	rootDir, _ := os.Getwd()
	if _, err := logger.New(rootDir, true); err != nil {
		fmt.Fprintf(os.Stderr, "start logger: %v\n", err)
		os.Exit(1)
	}

	kctx := kong.Parse(&cli,
		kong.Name("vitrinactl"),
		kong.Description("Vitrina site administration."),
		kong.UsageOnError(),
	)

	rt, err := newRuntime(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer rt.close()

	if err := kctx.Run(rt); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
