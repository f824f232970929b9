// internal/panel/sites.go
//
// Site CRUD.  Payloads are validated with the struct tags below; the
// publish-state columns are never writable through this surface, they
// change only when a publish succeeds.
package panel

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/vitrina/internal/site"
)

// sitePayload is the writable subset of a site.
type sitePayload struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	ModelType   string `json:"model_type" validate:"required,max=60"`
	Description string `json:"description" validate:"max=2000"`

	HeroTitle    string `json:"hero_title" validate:"max=200"`
	HeroSubtitle string `json:"hero_subtitle" validate:"max=300"`
	HeroImage    string `json:"hero_image" validate:"max=1000"`
	AboutText    string `json:"about_text" validate:"max=5000"`
	AboutImage   string `json:"about_image" validate:"max=1000"`

	ContactEmail   string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone   string `json:"contact_phone" validate:"max=40"`
	ContactAddress string `json:"contact_address" validate:"max=400"`
	WhatsappNumber string `json:"whatsapp_number" validate:"max=40"`

	FacebookURL  string `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL string `json:"instagram_url" validate:"omitempty,url"`
	TiktokURL    string `json:"tiktok_url" validate:"omitempty,url"`

	LogoURL        string `json:"logo_url" validate:"max=1000"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hexcolor"`

	Products   json.RawMessage `json:"products"`
	Gallery    json.RawMessage `json:"gallery"`
	Supporters json.RawMessage `json:"supporters"`

	CustomDomain string `json:"custom_domain" validate:"omitempty,fqdn"`
}

// siteView is what the panel UI reads back.
type siteView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	ModelType   string `json:"model_type"`
	Description string `json:"description"`

	HeroTitle    string `json:"hero_title"`
	HeroSubtitle string `json:"hero_subtitle"`
	HeroImage    string `json:"hero_image"`
	AboutText    string `json:"about_text"`
	AboutImage   string `json:"about_image"`

	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	ContactAddress string `json:"contact_address"`
	WhatsappNumber string `json:"whatsapp_number"`

	FacebookURL  string `json:"facebook_url"`
	InstagramURL string `json:"instagram_url"`
	TiktokURL    string `json:"tiktok_url"`

	LogoURL        string `json:"logo_url"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`

	Products   json.RawMessage `json:"products"`
	Gallery    json.RawMessage `json:"gallery"`
	Supporters json.RawMessage `json:"supporters"`

	CustomDomain string `json:"custom_domain,omitempty"`
	GithubRepo   string `json:"github_repo,omitempty"`
	GithubURL    string `json:"github_url,omitempty"`
	IsPublished  bool   `json:"is_published"`
}

func viewOf(r *site.Record) siteView {
	v := siteView{
		ID:             r.ID,
		Name:           r.Name,
		ModelType:      r.ModelType,
		Description:    r.Description,
		HeroTitle:      r.HeroTitle,
		HeroSubtitle:   r.HeroSubtitle,
		HeroImage:      r.HeroImage,
		AboutText:      r.AboutText,
		AboutImage:     r.AboutImage,
		ContactEmail:   r.ContactEmail,
		ContactPhone:   r.ContactPhone,
		ContactAddress: r.ContactAddress,
		WhatsappNumber: r.WhatsappNumber,
		FacebookURL:    r.FacebookURL,
		InstagramURL:   r.InstagramURL,
		TiktokURL:      r.TiktokURL,
		LogoURL:        r.LogoURL,
		PrimaryColor:   r.PrimaryColor,
		SecondaryColor: r.SecondaryColor,
		Products:       rawList(r.ProductsJSON),
		Gallery:        rawList(r.GalleryJSON),
		Supporters:     rawList(r.SupportersJSON),
		IsPublished:    r.IsPublished,
	}
	if r.CustomDomain != nil {
		v.CustomDomain = *r.CustomDomain
	}
	if r.GithubRepo != nil {
		v.GithubRepo = *r.GithubRepo
	}
	if r.GithubURL != nil {
		v.GithubURL = *r.GithubURL
	}
	return v
}

// rawList passes a stored JSON column through, defaulting to an empty
// array so clients never see null.
func rawList(raw string) json.RawMessage {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(raw)
}

func (p *sitePayload) toRecord() *site.Record {
	rec := &site.Record{
		Name:           strings.TrimSpace(p.Name),
		ModelType:      p.ModelType,
		Description:    p.Description,
		HeroTitle:      p.HeroTitle,
		HeroSubtitle:   p.HeroSubtitle,
		HeroImage:      p.HeroImage,
		AboutText:      p.AboutText,
		AboutImage:     p.AboutImage,
		ContactEmail:   p.ContactEmail,
		ContactPhone:   p.ContactPhone,
		ContactAddress: p.ContactAddress,
		WhatsappNumber: p.WhatsappNumber,
		FacebookURL:    p.FacebookURL,
		InstagramURL:   p.InstagramURL,
		TiktokURL:      p.TiktokURL,
		LogoURL:        p.LogoURL,
		PrimaryColor:   p.PrimaryColor,
		SecondaryColor: p.SecondaryColor,
		ProductsJSON:   string(p.Products),
		GalleryJSON:    string(p.Gallery),
		SupportersJSON: string(p.Supporters),
	}
	if d := strings.TrimSpace(p.CustomDomain); d != "" {
		rec.CustomDomain = &d
	}
	return rec
}

// decodePayload reads, decodes, and validates a site payload.
func decodePayload(r *http.Request) (*sitePayload, string) {
	var payload sitePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, "malformed JSON body"
	}
	if err := validate.Struct(&payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, "invalid field: " + verrs[0].Namespace()
		}
		return nil, "invalid payload"
	}
	return &payload, ""
}

func (p *Panel) listSites(w http.ResponseWriter, r *http.Request) {
	records, err := site.All(r.Context(), p.db)
	if err != nil {
		p.log.Errorw("list sites", "err", err)
		respondError(w, http.StatusInternalServerError, "could not list sites")
		return
	}
	views := make([]siteView, 0, len(records))
	for i := range records {
		views = append(views, viewOf(&records[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (p *Panel) getSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}
	rec, err := site.ByID(r.Context(), p.db, id)
	if err != nil {
		if errors.Is(err, site.ErrNotFound) {
			respondError(w, http.StatusNotFound, "site not found")
			return
		}
		p.log.Errorw("get site", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load site")
		return
	}
	respondJSON(w, http.StatusOK, viewOf(rec))
}

func (p *Panel) createSite(w http.ResponseWriter, r *http.Request) {
	payload, msg := decodePayload(r)
	if payload == nil {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	rec := payload.toRecord()
	id, err := site.Insert(r.Context(), p.db, rec)
	if err != nil {
		p.log.Errorw("create site", "err", err)
		respondError(w, http.StatusInternalServerError, "could not create site")
		return
	}
	rec.ID = id
	respondJSON(w, http.StatusCreated, viewOf(rec))
}

func (p *Panel) updateSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}
	payload, msg := decodePayload(r)
	if payload == nil {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := site.ByID(r.Context(), p.db, id)
	if err != nil {
		if errors.Is(err, site.ErrNotFound) {
			respondError(w, http.StatusNotFound, "site not found")
			return
		}
		p.log.Errorw("update site", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load site")
		return
	}

	rec := payload.toRecord()
	rec.ID = id
	rec.GithubRepo = existing.GithubRepo
	rec.GithubURL = existing.GithubURL
	rec.IsPublished = existing.IsPublished

	if err := site.Update(r.Context(), p.db, rec); err != nil {
		p.log.Errorw("update site", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not update site")
		return
	}
	respondJSON(w, http.StatusOK, viewOf(rec))
}

func (p *Panel) deleteSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}
	rec, err := site.ByID(r.Context(), p.db, id)
	if err != nil {
		if errors.Is(err, site.ErrNotFound) {
			respondError(w, http.StatusNotFound, "site not found")
			return
		}
		p.log.Errorw("delete site", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load site")
		return
	}

	// Remote cleanup is best effort; the row goes away regardless.
	if err := p.pipeline.DeleteRemote(r.Context(), rec); err != nil {
		p.log.Warnw("remote repository delete failed", "id", id, "err", err)
	}
	if err := site.Delete(r.Context(), p.db, id); err != nil {
		p.log.Errorw("delete site", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not delete site")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
