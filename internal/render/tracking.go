// internal/render/tracking.go
//
// Client-side visit beacon.  Embedded in every generated page; posts one
// JSON payload per page load back to the panel's stats endpoint, which
// enriches and stores it (see internal/visit).
package render

import "fmt"

func trackingScript(siteID uint64, statsBaseURL string) []byte {
	js := fmt.Sprintf(`// Vitrina visit beacon
(function() {
    var payload = {
        site_id: %d,
        timestamp: new Date().toISOString(),
        referrer: document.referrer,
        userAgent: navigator.userAgent
    };

    fetch(%q + '/api/stats/%d/visit', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(payload)
    }).catch(function (err) { console.log('tracking error:', err); });
})();
`, siteID, statsBaseURL, siteID)

	return []byte(js)
}
