// internal/assets/localizer.go
//
// Asset Localizer.
//
// Context
// -------
// Given a possibly-remote image reference, Localize makes sure a local,
// content-addressed copy exists under the uploads directory and returns
// the `images/<sha1(ref)>.<ext>` path the generated site will use.  The
// digest covers the *original reference string*, not the bytes, so the
// local filename is known before the download finishes and repeated
// publishes of the same URL converge on the same file.
//
// Failure policy
// --------------
// Localize never returns an error.  A site must still publish when a
// decorative image host is down, so every failure degrades to “keep the
// original reference” with a logged warning and a metrics tick.
package assets

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/vitrina/internal/metrics"
)

// Localizer downloads remote references into one uploads directory.
// Safe for concurrent use; concurrent fetches of the same URL race only
// on an idempotent file write.
type Localizer struct {
	uploadsDir string
	client     *http.Client
}

// New returns a Localizer writing into uploadsDir.  The directory is
// created eagerly so a mis-configured path surfaces at boot, not during
// the first publish.
func New(uploadsDir string, timeout time.Duration) (*Localizer, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Localizer{
		uploadsDir: uploadsDir,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// UploadsDir exposes the backing directory (static mount, publisher reads).
func (l *Localizer) UploadsDir() string { return l.uploadsDir }

// Localize ensures ref is available locally.  It returns the canonical
// reference to embed in the site plus whether a download happened on this
// call.
//
//   - empty, data-URI, and already-local refs pass through untouched.
//   - non-http(s) refs pass through untouched.
//   - remote refs are canonicalized, fetched with the bounded client, and
//     stored as images/<sha1(canonical)>.<ext>.  If the target file already
//     exists the fetch is skipped entirely.
func (l *Localizer) Localize(ctx context.Context, ref string) (string, bool) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, "data:") {
		return trimmed, false
	}

	canonical := Canonicalize(trimmed)
	if IsLocal(canonical) {
		return strings.TrimPrefix(canonical, "/"), false
	}
	if !IsRemote(canonical) {
		return trimmed, false
	}

	// The digest is known before the extension is, so look for any
	// existing <sha1>.* copy before touching the network.  A prior call
	// may have derived the extension from the Content-Type alone.
	if existing := l.existingFile(canonical); existing != "" {
		return "images/" + existing, false
	}

	body, contentType, err := l.fetch(ctx, canonical)
	if err != nil {
		zap.S().Warnw("asset download failed, keeping original reference",
			"ref", trimmed, "err", err)
		metrics.AssetDownloadErrorsTotal.Inc()
		return trimmed, false
	}

	ext := extFromPath(canonical)
	if ext == "" {
		ext = extFromContentType(contentType)
	}
	if ext == "" {
		ext = "jpg"
	}
	filename := hashedName(canonical, ext)
	target := filepath.Join(l.uploadsDir, filename)

	if _, err := os.Stat(target); err != nil {
		if err := os.WriteFile(target, body, 0o644); err != nil {
			zap.S().Warnw("asset save failed, keeping original reference",
				"ref", trimmed, "err", err)
			metrics.AssetDownloadErrorsTotal.Inc()
			return trimmed, false
		}
	}

	metrics.AssetDownloadsTotal.Inc()
	return "images/" + filename, true
}

// CanonicalName predicts the local reference Localize would produce for
// a ref without touching the network, so callers can resolve the final
// name before (or instead of) downloading.  When the extension is not
// derivable from the URL path the prediction assumes "jpg", matching the
// Localize fallback for hosts that omit a usable Content-Type.
func CanonicalName(ref string) string {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" || strings.HasPrefix(trimmed, "data:") {
		return trimmed
	}

	canonical := Canonicalize(trimmed)
	if IsLocal(canonical) {
		return strings.TrimPrefix(canonical, "/")
	}
	if !IsRemote(canonical) {
		return trimmed
	}

	ext := extFromPath(canonical)
	if ext == "" {
		ext = "jpg"
	}
	return "images/" + hashedName(canonical, ext)
}

// existingFile returns the stored filename for canonical if a local copy
// already exists, regardless of which extension the earlier download
// settled on.  The digest is hex, so the glob pattern needs no escaping.
func (l *Localizer) existingFile(canonical string) string {
	if ext := extFromPath(canonical); ext != "" {
		filename := hashedName(canonical, ext)
		if _, err := os.Stat(filepath.Join(l.uploadsDir, filename)); err == nil {
			return filename
		}
		return ""
	}
	matches, err := filepath.Glob(filepath.Join(l.uploadsDir, hashedName(canonical, "")+".*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return filepath.Base(matches[0])
}

// fetch GETs the URL and returns body + declared content type.
func (l *Localizer) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &url.Error{Op: "Get", URL: rawURL, Err: errStatus(resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

type errStatus int

func (e errStatus) Error() string { return "unexpected status " + http.StatusText(int(e)) }

// hashedName digests the canonical reference, not the content.
func hashedName(canonical, ext string) string {
	sum := sha1.Sum([]byte(canonical))
	name := hex.EncodeToString(sum[:])
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// extFromPath pulls a short extension off the URL path, if any.
func extFromPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// extFromContentType maps a declared MIME type to an extension.
func extFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return strings.TrimPrefix(exts[0], ".")
}
