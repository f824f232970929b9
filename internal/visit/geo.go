// internal/visit/geo.go
//
// Best-effort GeoIP lookup for visit enrichment (MaxMind GeoLite2).
//
// Notes
// -----
// • The database file is optional.  OpenGeo on a missing path returns a
//   nil *Geo, and a nil receiver resolves every IP to the empty country,
//   so callers never branch on availability.
// • The reader is safe for concurrent reads, which is all we perform.
package visit

import (
	"net"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// Geo wraps a MaxMind reader.  Nil is a valid, inert instance.
type Geo struct {
	reader *geoip2.Reader
}

// OpenGeo opens the GeoLite2 database at dbPath.  An empty path or open
// failure yields a nil Geo and a logged warning rather than an error;
// geolocation is decoration, not a dependency.
func OpenGeo(dbPath string) *Geo {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		zap.S().Warnw("geoip database unavailable", "path", dbPath, "err", err)
		return nil
	}
	return &Geo{reader: r}
}

// Close releases the underlying reader.
func (g *Geo) Close() {
	if g != nil && g.reader != nil {
		_ = g.reader.Close()
	}
}

// Country returns the ISO 3166-1 alpha-2 code for ip, or "" when the
// reader is absent, the IP is unparsable, or the database has no match.
func (g *Geo) Country(ip string) string {
	if g == nil || g.reader == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	rec, err := g.reader.Country(parsed)
	if err != nil || rec == nil {
		return ""
	}
	return rec.Country.IsoCode
}
