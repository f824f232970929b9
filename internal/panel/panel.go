// internal/panel/panel.go
//
// HTTP surface of the control panel: site CRUD, publish trigger and
// status, visit stats, and image uploads, all JSON under /api.  Handlers
// stay thin; everything stateful lives in the packages they call.
package panel

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/vitrina/internal/publish"
	"github.com/yanizio/vitrina/internal/visit"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Panel bundles the dependencies the handlers share.
type Panel struct {
	db         *sqlx.DB
	pipeline   *publish.Pipeline
	geo        *visit.Geo
	uploadsDir string
	log        *zap.SugaredLogger
}

// New wires the panel.  geo may be nil; visits are then stored without a
// country.
func New(db *sqlx.DB, pipeline *publish.Pipeline, geo *visit.Geo, uploadsDir string) *Panel {
	return &Panel{
		db:         db,
		pipeline:   pipeline,
		geo:        geo,
		uploadsDir: uploadsDir,
		log:        zap.S().Named("panel"),
	}
}

// Routes mounts every /api endpoint on r.
func (p *Panel) Routes(r chi.Router) {
	r.Route("/api", func(api chi.Router) {
		api.Get("/sites", p.listSites)
		api.Post("/sites", p.createSite)
		api.Get("/sites/{id}", p.getSite)
		api.Put("/sites/{id}", p.updateSite)
		api.Delete("/sites/{id}", p.deleteSite)

		api.Post("/sites/{id}/publish", p.publishSite)
		api.Get("/sites/{id}/publish", p.publishStatus)

		api.Get("/dashboard/stats", p.dashboardStats)
		api.Post("/upload-image", p.uploadImage)

		// The beacon posts from published origins, so stats endpoints
		// carry permissive CORS.
		api.Group(func(stats chi.Router) {
			stats.Use(allowAnyOrigin)
			stats.Get("/stats/{id}", p.siteStats)
			stats.Post("/stats/{id}/visit", p.recordVisit)
			stats.Options("/stats/{id}/visit", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})
}

// allowAnyOrigin opens the stats endpoints to the generated sites, which
// live on foreign origins (github.io or custom domains).
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
