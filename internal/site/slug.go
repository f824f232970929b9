// internal/site/slug.go
//
// Repository-name slug helper.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Collapse consecutive “-” to a single “-”.
// 4. Trim leading / trailing “-”.
// 5. If the result is empty, return "site".
//
// Notes
// -----
// • No Unicode transliteration; accented characters collapse to dashes,
//   which is enough for a repository name the owner never types by hand.
// • Slugs are max 80 runes so the "-<id>" suffix always fits GitHub's
//   100-character repository-name limit.

package site

import "strconv"
import "strings"

// MakeSlug converts a display name → lower-kebab ASCII.
func MakeSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any non-ASCII or punctuation becomes a single dash
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "site"
	}
	if len(slug) > 80 {
		slug = slug[:80]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// DesiredRepoName derives the repository name used on first publish.  The
// numeric suffix keeps names unique across businesses with equal display
// names.  Records that already carry a repository name never call this.
func DesiredRepoName(name string, id uint64) string {
	return MakeSlug(name) + "-" + strconv.FormatUint(id, 10)
}
