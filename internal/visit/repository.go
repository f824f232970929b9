// internal/visit/repository.go
//
// sqlx queries for the `visit` table.  Write path is the public beacon
// endpoint; read paths feed the per-site stats page and the admin
// dashboard.
package visit

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Insert stores one enriched visit.
func Insert(ctx context.Context, db *sqlx.DB, v *Record) error {
	const q = `
        INSERT INTO visit (
            site_id, ip_address, country, browser, os, device, is_bot,
            user_agent, referer, timestamp
        ) VALUES (
            :site_id, :ip_address, :country, :browser, :os, :device, :is_bot,
            :user_agent, :referer, :timestamp
        )`
	_, err := db.NamedExecContext(ctx, q, v)
	return err
}

// CountBySite returns the all-time total for one site.
func CountBySite(ctx context.Context, db *sqlx.DB, siteID uint64) (int, error) {
	var n int
	err := db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM visit WHERE site_id = ?`, siteID)
	return n, err
}

// CountAll returns the all-time total across every site.
func CountAll(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM visit`)
	return n, err
}

// LastSevenDays returns one bucket per calendar day, oldest first.  Days
// with zero visits are filled in by the handler, not the query, so the
// SQL stays portable.
func LastSevenDays(ctx context.Context, db *sqlx.DB, siteID uint64) ([]DayCount, error) {
	const q = `
        SELECT DATE_FORMAT(timestamp, '%Y-%m-%d') AS date,
               COUNT(*)                           AS visits
        FROM   visit
        WHERE  site_id = ?
          AND  timestamp >= DATE_SUB(CURDATE(), INTERVAL 6 DAY)
        GROUP  BY date
        ORDER  BY date`
	var rows []DayCount
	if err := db.SelectContext(ctx, &rows, q, siteID); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopSites returns the five most-visited sites for the dashboard.
func TopSites(ctx context.Context, db *sqlx.DB) ([]SiteCount, error) {
	const q = `
        SELECT s.id       AS site_id,
               s.name     AS name,
               COUNT(v.id) AS visits
        FROM   site s
        LEFT   JOIN visit v ON v.site_id = s.id
        GROUP  BY s.id, s.name
        ORDER  BY visits DESC
        LIMIT  5`
	var rows []SiteCount
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
