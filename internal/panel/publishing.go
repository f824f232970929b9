// internal/panel/publishing.go
//
// Publish trigger and status.  The trigger answers 202 immediately; the
// pipeline runs on its own goroutine and the UI polls the GET endpoint
// until the phase is done or failed.
package panel

import (
	"errors"
	"net/http"

	"github.com/yanizio/vitrina/internal/publish"
	"github.com/yanizio/vitrina/internal/site"
)

func (p *Panel) publishSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}
	if _, err := site.ByID(r.Context(), p.db, id); err != nil {
		if errors.Is(err, site.ErrNotFound) {
			respondError(w, http.StatusNotFound, "site not found")
			return
		}
		p.log.Errorw("publish trigger", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load site")
		return
	}

	if err := p.pipeline.Start(id); err != nil {
		if errors.Is(err, publish.ErrPublishInFlight) {
			respondJSON(w, http.StatusConflict, p.pipeline.Status(id))
			return
		}
		respondError(w, publish.HTTPStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, p.pipeline.Status(id))
}

func (p *Panel) publishStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}
	respondJSON(w, http.StatusOK, p.pipeline.Status(id))
}
