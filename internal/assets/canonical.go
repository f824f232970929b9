// internal/assets/canonical.go
//
// Canonical-reference helpers.
//
// Context
// -------
// Site editors paste image links from wherever they have them: Google
// Drive viewer pages, Unsplash pages, already-uploaded `images/…` paths,
// or inline data URIs.  Before a reference is fetched or injected into a
// template it is normalized to a directly fetchable form.  Provider
// quirks live here and nowhere else.
//
// Notes
// -----
// • Drive files must be shared as “anyone with the link” for the direct
//   form to work; we cannot detect that here, the fetch just 403s and the
//   localizer falls back to the original reference.
package assets

import (
	"fmt"
	"net/url"
	"strings"
)

// localAssetHosts are hosts whose `/images/…` paths are really our own
// uploads dir exposed during preview; they reduce to relative paths.
var localAssetHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
}

// Canonicalize resolves provider-specific viewer URLs to directly
// fetchable ones and strips local-preview prefixes.  Unknown references
// pass through unchanged.
func Canonicalize(ref string) string {
	cleaned := strings.TrimSpace(ref)
	if cleaned == "" {
		return ""
	}
	if local := normalizeLocal(cleaned); local != cleaned {
		return local
	}
	if strings.Contains(cleaned, "drive.google.com") {
		if id := driveFileID(cleaned); id != "" {
			return "https://drive.google.com/uc?export=view&id=" + id
		}
	}
	return optimizeMedia(cleaned)
}

// IsLocal reports whether ref already points into the local asset
// namespace (`images/…`).
func IsLocal(ref string) bool {
	return strings.HasPrefix(ref, "images/") || strings.HasPrefix(ref, "/images/")
}

// IsRemote reports whether ref is an absolute http(s) URL.
func IsRemote(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// normalizeLocal strips localhost prefixes and leading slashes from
// references that point at our own /images mount.
func normalizeLocal(ref string) string {
	if strings.HasPrefix(ref, "images/") {
		return ref
	}
	if strings.HasPrefix(ref, "/images/") {
		return strings.TrimPrefix(ref, "/")
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" {
		return ref
	}
	if localAssetHosts[strings.ToLower(u.Hostname())] && strings.HasPrefix(u.Path, "/images/") {
		return strings.TrimPrefix(u.Path, "/")
	}
	return ref
}

// driveFileID extracts the file ID from the Drive URL shapes seen in the
// wild: /file/d/<ID>/…, open?id=<ID>, uc?id=<ID>, and ?fileid=<ID>.
func driveFileID(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if i := strings.Index(u.Path, "/d/"); i != -1 {
		rest := u.Path[i+len("/d/"):]
		if j := strings.IndexByte(rest, '/'); j != -1 {
			rest = rest[:j]
		}
		return rest
	}
	q := u.Query()
	if id := q.Get("id"); id != "" {
		return id
	}
	return q.Get("fileid")
}

// optimizeMedia adds size/quality parameters to hosts known to serve
// arbitrarily large originals, so published pages stay light.
func optimizeMedia(ref string) string {
	const maxWidth = 1280

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "images.unsplash.com"):
		q := u.Query()
		q.Set("auto", "format")
		q.Set("fit", "max")
		q.Set("w", fmt.Sprint(maxWidth))
		q.Set("q", "80")
		u.RawQuery = q.Encode()
		return u.String()
	case strings.Contains(host, "picsum.photos") && !strings.Contains(u.Path, "/seed/"):
		// Unseeded picsum URLs return a different image on every fetch;
		// pin them so republishing is stable.
		return fmt.Sprintf("https://picsum.photos/seed/vitrina/%d/%d", maxWidth, maxWidth*5/8)
	}
	return ref
}
