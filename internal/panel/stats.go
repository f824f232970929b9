// internal/panel/stats.go
//
// Visit beacon ingestion and stats reads.  The beacon payload is
// whatever tracking.js sends; the server-side view (IP, user agent
// header) wins over the client-reported fields where both exist.
package panel

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yanizio/vitrina/internal/metrics"
	"github.com/yanizio/vitrina/internal/site"
	"github.com/yanizio/vitrina/internal/ua"
	"github.com/yanizio/vitrina/internal/visit"
)

type visitPayload struct {
	Referrer  string `json:"referrer"`
	UserAgent string `json:"userAgent"`
}

func (p *Panel) recordVisit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	var payload visitPayload
	// A malformed or empty body still counts as a visit.
	_ = json.NewDecoder(r.Body).Decode(&payload)

	rawUA := r.UserAgent()
	if rawUA == "" {
		rawUA = payload.UserAgent
	}
	info := ua.Parse(rawUA)

	ip := clientIP(r)
	rec := &visit.Record{
		SiteID:    id,
		IPAddress: ip,
		Country:   p.geo.Country(ip),
		Browser:   info.Browser,
		OS:        info.OS,
		Device:    info.Device,
		IsBot:     info.IsBot,
		UserAgent: rawUA,
		Referer:   payload.Referrer,
		Timestamp: time.Now(),
	}

	if err := visit.Insert(r.Context(), p.db, rec); err != nil {
		p.log.Warnw("visit insert failed", "site", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not record visit")
		return
	}
	metrics.VisitsTotal.Inc()
	respondJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (p *Panel) siteStats(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	total, err := visit.CountBySite(r.Context(), p.db, id)
	if err != nil {
		p.log.Errorw("site stats", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	days, err := visit.LastSevenDays(r.Context(), p.db, id)
	if err != nil {
		p.log.Errorw("site stats", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_visits": total,
		"last_7_days":  fillSevenDays(days, time.Now()),
	})
}

// fillSevenDays pads the query result so every one of the last seven
// calendar days appears, zero-visit days included, oldest first.
func fillSevenDays(days []visit.DayCount, now time.Time) []visit.DayCount {
	byDate := make(map[string]int, len(days))
	for _, d := range days {
		byDate[d.Date] = d.Visits
	}

	out := make([]visit.DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, visit.DayCount{Date: date, Visits: byDate[date]})
	}
	return out
}

func (p *Panel) dashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalSites, err := site.CountAll(ctx, p.db)
	if err != nil {
		p.log.Errorw("dashboard stats", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	published, err := site.CountPublished(ctx, p.db)
	if err != nil {
		p.log.Errorw("dashboard stats", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	totalVisits, err := visit.CountAll(ctx, p.db)
	if err != nil {
		p.log.Errorw("dashboard stats", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	top, err := visit.TopSites(ctx, p.db)
	if err != nil {
		p.log.Errorw("dashboard stats", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_sites":     totalSites,
		"published_sites": published,
		"total_visits":    totalVisits,
		"top_sites":       top,
	})
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
