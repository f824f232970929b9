// internal/site/model.go
//
// Persistent model for one business microsite.
//
// Context
// -------
// A Record mirrors one row in the `site` table.  It is owned by the
// persistence layer; the publish pipeline reads it, and on success writes
// back exactly four things: the repository name (first publish only), the
// public URL, the published flag, and any image reference that was
// localized as a side effect of rendering.
package site

import (
	"encoding/json"
	"strings"
	"time"
)

// Record mirrors one row in the persistent `site` table.
//
// GithubRepo and GithubURL stay NULL until the first successful publish.
// Once GithubRepo is set it never changes; republishing reuses it.
type Record struct {
	ID        uint64 `db:"id"`
	Name      string `db:"name"`
	ModelType string `db:"model_type"`

	Description  string `db:"description"`
	HeroTitle    string `db:"hero_title"`
	HeroSubtitle string `db:"hero_subtitle"`
	HeroImage    string `db:"hero_image"`
	AboutText    string `db:"about_text"`
	AboutImage   string `db:"about_image"`

	ContactEmail   string `db:"contact_email"`
	ContactPhone   string `db:"contact_phone"`
	ContactAddress string `db:"contact_address"`
	WhatsappNumber string `db:"whatsapp_number"`

	FacebookURL  string `db:"facebook_url"`
	InstagramURL string `db:"instagram_url"`
	TiktokURL    string `db:"tiktok_url"`

	LogoURL        string `db:"logo_url"`
	PrimaryColor   string `db:"primary_color"`
	SecondaryColor string `db:"secondary_color"`

	ProductsJSON   string `db:"products_json"`
	GalleryJSON    string `db:"gallery_json"`
	SupportersJSON string `db:"supporters_json"`

	CustomDomain *string `db:"custom_domain"`
	GithubRepo   *string `db:"github_repo"`
	GithubURL    *string `db:"github_url"`
	IsPublished  bool    `db:"is_published"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Product is one decoded entry of ProductsJSON.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
}

// Supporter is one decoded entry of SupportersJSON (sponsor logos shown in
// the site footer).
type Supporter struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Products decodes ProductsJSON.  Malformed or empty JSON yields an empty
// slice, never an error: a broken product list must not block rendering.
func (r *Record) Products() []Product {
	return decodeList[Product](r.ProductsJSON)
}

// Gallery decodes GalleryJSON into an ordered list of image references.
func (r *Record) Gallery() []string {
	return decodeList[string](r.GalleryJSON)
}

// Supporters decodes SupportersJSON.
func (r *Record) Supporters() []Supporter {
	return decodeList[Supporter](r.SupportersJSON)
}

func decodeList[T any](raw string) []T {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// RepoName returns the stable repository name for this record, or "" when
// none has been assigned yet.
func (r *Record) RepoName() string {
	if r.GithubRepo == nil {
		return ""
	}
	return *r.GithubRepo
}
