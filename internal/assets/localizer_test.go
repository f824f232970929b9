// internal/assets/localizer_test.go
//
// Localizer behavior against an httptest image host.

package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newLocalizer(t *testing.T) *Localizer {
	t.Helper()
	l, err := New(t.TempDir(), 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestLocalizeIdempotent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	l := newLocalizer(t)
	url := srv.URL + "/gallery/cover.png"

	first, downloaded := l.Localize(context.Background(), url)
	if !downloaded {
		t.Fatalf("first call should download")
	}
	if !strings.HasPrefix(first, "images/") || !strings.HasSuffix(first, ".png") {
		t.Fatalf("unexpected canonical path %q", first)
	}

	second, downloaded := l.Localize(context.Background(), url)
	if downloaded {
		t.Fatalf("second call must not download")
	}
	if second != first {
		t.Fatalf("canonical path changed across calls: %q vs %q", first, second)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one fetch, saw %d", n)
	}

	if _, err := os.Stat(filepath.Join(l.UploadsDir(), strings.TrimPrefix(first, "images/"))); err != nil {
		t.Fatalf("localized file missing: %v", err)
	}
}

func TestLocalizeIdempotentWithoutPathExtension(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	l := newLocalizer(t)
	url := srv.URL + "/photo" // extension only discoverable from Content-Type

	first, downloaded := l.Localize(context.Background(), url)
	if !downloaded {
		t.Fatalf("first call should download")
	}
	if !strings.HasSuffix(first, ".png") {
		t.Fatalf("expected .png suffix from Content-Type, got %q", first)
	}

	second, downloaded := l.Localize(context.Background(), url)
	if downloaded {
		t.Fatalf("second call must not download")
	}
	if second != first {
		t.Fatalf("canonical path changed across calls: %q vs %q", first, second)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one fetch, saw %d", n)
	}
}

func TestLocalizeFailureKeepsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	l := newLocalizer(t)
	url := srv.URL + "/secret.jpg"

	got, downloaded := l.Localize(context.Background(), url)
	if downloaded {
		t.Fatalf("failed fetch reported as downloaded")
	}
	if got != url {
		t.Fatalf("failed fetch must return original reference, got %q", got)
	}
}

func TestLocalizePassThroughs(t *testing.T) {
	l := newLocalizer(t)
	ctx := context.Background()

	cases := map[string]string{
		"":                          "",
		"   ":                       "",
		"data:image/png;base64,AA=": "data:image/png;base64,AA=",
		"images/x.jpg":              "images/x.jpg",
		"/images/x.jpg":             "images/x.jpg",
		"not a url":                 "not a url",
		"ftp://host/x.jpg":          "ftp://host/x.jpg",
	}
	for in, want := range cases {
		got, downloaded := l.Localize(ctx, in)
		if downloaded {
			t.Errorf("Localize(%q) claimed a download", in)
		}
		if got != want {
			t.Errorf("Localize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocalizeExtensionFromContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp-bytes"))
	}))
	defer srv.Close()

	l := newLocalizer(t)
	got, downloaded := l.Localize(context.Background(), srv.URL+"/no-extension")
	if !downloaded {
		t.Fatalf("expected download")
	}
	if !strings.HasSuffix(got, ".webp") {
		t.Fatalf("expected .webp suffix from Content-Type, got %q", got)
	}
}
