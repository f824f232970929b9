// internal/visit/model.go
//
// Visit records received from the tracking script embedded in every
// published microsite.  Each beacon is enriched server-side with parsed
// user-agent attributes and a best-effort GeoIP country before it is
// stored; the raw header is kept so visits can be re-parsed if the UA
// library improves.
package visit

import "time"

// Record mirrors one row in the `visit` table.
type Record struct {
	ID        uint64    `db:"id"`
	SiteID    uint64    `db:"site_id"`
	IPAddress string    `db:"ip_address"`
	Country   string    `db:"country"` // ISO 3166-1 alpha-2, may be empty
	Browser   string    `db:"browser"`
	OS        string    `db:"os"`
	Device    string    `db:"device"`
	IsBot     bool      `db:"is_bot"`
	UserAgent string    `db:"user_agent"`
	Referer   string    `db:"referer"`
	Timestamp time.Time `db:"timestamp"`
}

// DayCount is one bucket of the last-7-days series.
type DayCount struct {
	Date   string `db:"date" json:"date"`
	Visits int    `db:"visits" json:"visits"`
}

// SiteCount pairs a site with its visit total (dashboard top list).
type SiteCount struct {
	SiteID uint64 `db:"site_id" json:"id"`
	Name   string `db:"name" json:"name"`
	Visits int    `db:"visits" json:"visits"`
}
