// internal/panel/upload.go
//
// Admin image upload.  Files land in the same uploads directory the
// localizer writes to, under a uuid name, and are referenced from site
// records as images/<name>.
package panel

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20 // 10 MiB

var allowedUploadExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".webp": true, ".svg": true,
}

func (p *Panel) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "multipart body required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image field required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		respondError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	name := uuid.New().String() + ext
	target := filepath.Join(p.uploadsDir, name)

	out, err := os.Create(target)
	if err != nil {
		p.log.Errorw("upload create failed", "target", target, "err", err)
		respondError(w, http.StatusInternalServerError, "could not store image")
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(target)
		p.log.Errorw("upload write failed", "target", target, "err", err)
		respondError(w, http.StatusInternalServerError, "could not store image")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"filename": name,
		"ref":      "images/" + name,
		"url":      "/images/" + name,
	})
}
