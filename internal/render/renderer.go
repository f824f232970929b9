// internal/render/renderer.go
//
// Site Renderer: one business record + one model template → a complete
// static site bundle.
//
// Context
// -------
// Rendering is a pure function of its inputs apart from template-file
// reads: identical record + model yields a byte-identical bundle, except
// for the embedded current year.  The bundle is produced fresh on every
// publish and never cached, because the record may have changed.
//
// Template lookup precedence (first hit wins), mirroring the override
// chain used for panel views:
//
//  1. <templates>/<model>/index.html   – bespoke page for the vertical
//  2. built-in fallback template       – generic five-section page
//
// and for the stylesheet:
//
//  1. <templates>/<model>/styles.css   – bespoke stylesheet
//  2. generated default parameterized by the resolved palette
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yanizio/vitrina/internal/assets"
	"github.com/yanizio/vitrina/internal/site"
)

// ErrTemplateNotFound is returned when the record names a model type the
// registry does not know.
var ErrTemplateNotFound = errors.New("no template mapping for model type")

// Bundle maps a relative file path to its content.  Text files are UTF-8;
// the publisher treats everything as bytes.
type Bundle map[string][]byte

// Renderer turns records into bundles.  Construct once and share; it is
// stateless apart from its configuration.
type Renderer struct {
	templatesDir string
	registry     *Registry
	statsBaseURL string // panel base URL the tracking script reports to
}

// NewRenderer wires the registry and template directory together.
func NewRenderer(templatesDir string, registry *Registry, statsBaseURL string) *Renderer {
	return &Renderer{
		templatesDir: templatesDir,
		registry:     registry,
		statsBaseURL: statsBaseURL,
	}
}

// pageContext is the data handed to index templates.  Every field is
// always populated (empty string or empty slice, never nil pointers), so
// templates never render a literal "None" or "null".
type pageContext struct {
	SiteID          uint64
	SiteName        string
	SiteDescription string
	HeroTitle       string
	HeroSubtitle    string
	HeroImage       string
	AboutText       string
	AboutImage      string
	ContactEmail    string
	ContactPhone    string
	ContactAddress  string
	WhatsappNumber  string
	FacebookURL     string
	InstagramURL    string
	TiktokURL       string
	LogoURL         string
	PrimaryColor    string
	SecondaryColor  string
	Palette         Palette
	ModelIcon       string
	Products        []site.Product
	Gallery         []string
	Supporters      []site.Supporter
	CurrentYear     int
}

// Render produces the full bundle for one record.
func (r *Renderer) Render(rec *site.Record) (Bundle, error) {
	model, ok := r.registry.Get(rec.ModelType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, rec.ModelType)
	}

	ctx := r.buildContext(rec, model)

	page, err := r.renderIndex(model, ctx)
	if err != nil {
		return nil, err
	}

	bundle := Bundle{
		"index.html":  page,
		"styles.css":  r.stylesheet(model, ctx),
		"tracking.js": trackingScript(rec.ID, r.statsBaseURL),
	}
	return bundle, nil
}

// buildContext fills every template field, defaulting the optional ones
// and resolving hero/palette fallbacks.  Image-bearing fields pass through
// reference canonicalization (no downloads here; the pipeline localizes
// before rendering).
func (r *Renderer) buildContext(rec *site.Record, model Model) pageContext {
	heroTitle := rec.HeroTitle
	if heroTitle == "" {
		heroTitle = rec.Name
	}
	heroSubtitle := rec.HeroSubtitle
	if heroSubtitle == "" {
		heroSubtitle = "Bienvenido a nuestro sitio"
	}

	primary := rec.PrimaryColor
	if primary == "" {
		primary = model.Palette.Primary
	}
	secondary := rec.SecondaryColor
	if secondary == "" {
		secondary = model.Palette.Secondary
	}

	products := rec.Products()
	for i := range products {
		products[i].Image = assets.Canonicalize(products[i].Image)
	}
	gallery := rec.Gallery()
	for i := range gallery {
		gallery[i] = assets.Canonicalize(gallery[i])
	}
	supporters := rec.Supporters()
	for i := range supporters {
		supporters[i].Logo = assets.Canonicalize(supporters[i].Logo)
	}

	return pageContext{
		SiteID:          rec.ID,
		SiteName:        rec.Name,
		SiteDescription: rec.Description,
		HeroTitle:       heroTitle,
		HeroSubtitle:    heroSubtitle,
		HeroImage:       assets.Canonicalize(rec.HeroImage),
		AboutText:       rec.AboutText,
		AboutImage:      assets.Canonicalize(rec.AboutImage),
		ContactEmail:    rec.ContactEmail,
		ContactPhone:    rec.ContactPhone,
		ContactAddress:  rec.ContactAddress,
		WhatsappNumber:  rec.WhatsappNumber,
		FacebookURL:     rec.FacebookURL,
		InstagramURL:    rec.InstagramURL,
		TiktokURL:       rec.TiktokURL,
		LogoURL:         assets.Canonicalize(rec.LogoURL),
		PrimaryColor:    primary,
		SecondaryColor:  secondary,
		Palette:         model.Palette,
		ModelIcon:       model.Icon,
		Products:        products,
		Gallery:         gallery,
		Supporters:      supporters,
		CurrentYear:     time.Now().Year(),
	}
}

// renderIndex executes the bespoke template when one exists, otherwise the
// built-in fallback page.
func (r *Renderer) renderIndex(model Model, ctx pageContext) ([]byte, error) {
	src := fallbackPage
	name := "fallback"

	bespoke := filepath.Join(r.templatesDir, model.ID, "index.html")
	if raw, err := os.ReadFile(bespoke); err == nil {
		src = string(raw)
		name = model.ID
	}

	tpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

// stylesheet prefers a bespoke per-model file, falling back to the
// generated default.
func (r *Renderer) stylesheet(model Model, ctx pageContext) []byte {
	bespoke := filepath.Join(r.templatesDir, model.ID, "styles.css")
	if raw, err := os.ReadFile(bespoke); err == nil {
		return raw
	}
	return defaultStylesheet(ctx.PrimaryColor, ctx.SecondaryColor, model.Palette)
}
