// internal/render/renderer_test.go
//
// Renderer determinism, fallback completeness, and registry behavior.

package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/vitrina/internal/site"
)

func testRegistry() *Registry {
	return NewRegistry(Model{
		ID:    "artesanias",
		Label: "Artesanías",
		Icon:  "🧵",
		Palette: Palette{
			Primary:   "#8B4513",
			Secondary: "#D2691E",
			Accent:    "#F4A460",
			Neutral:   "#FAF0E6",
		},
	})
}

func minimalRecord() *site.Record {
	return &site.Record{
		ID:        12,
		Name:      "Taller de Barro",
		ModelType: "artesanias",
	}
}

func TestRenderUnknownModel(t *testing.T) {
	r := NewRenderer(t.TempDir(), testRegistry(), "https://panel.example.com")
	_, err := r.Render(&site.Record{ID: 1, Name: "x", ModelType: "astilleros"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer(t.TempDir(), testRegistry(), "https://panel.example.com")
	rec := minimalRecord()
	rec.ProductsJSON = `[{"name":"Olla","description":"Barro negro","price":"250","image":"images/olla.jpg"}]`

	first, err := r.Render(rec)
	require.NoError(t, err)
	second, err := r.Render(rec)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for path, content := range first {
		assert.True(t, bytes.Equal(content, second[path]), "file %s differs between renders", path)
	}
}

func TestRenderEmptyOptionalFields(t *testing.T) {
	r := NewRenderer(t.TempDir(), testRegistry(), "https://panel.example.com")

	bundle, err := r.Render(minimalRecord())
	require.NoError(t, err)

	require.Contains(t, bundle, "index.html")
	require.Contains(t, bundle, "styles.css")
	require.Contains(t, bundle, "tracking.js")

	page := string(bundle["index.html"])

	// The generic page is complete even with every optional field empty.
	for _, marker := range []string{
		`class="header"`,
		`id="inicio"`,
		`id="nosotros"`,
		`id="productos"`,
		`id="contacto"`,
		`class="footer"`,
	} {
		assert.Contains(t, page, marker)
	}

	assert.NotContains(t, page, "None")
	assert.NotContains(t, page, "null")
	assert.NotContains(t, page, "<nil>")

	// Hero falls back to the site name.
	assert.Contains(t, page, "Taller de Barro")
}

func TestRenderPaletteOverride(t *testing.T) {
	r := NewRenderer(t.TempDir(), testRegistry(), "https://panel.example.com")

	rec := minimalRecord()
	rec.PrimaryColor = "#112233"

	bundle, err := r.Render(rec)
	require.NoError(t, err)

	css := string(bundle["styles.css"])
	assert.Contains(t, css, "--primary: #112233")
	assert.Contains(t, css, "--secondary: #D2691E") // model default
}

func TestRenderBespokeTemplateWins(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "artesanias")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(modelDir, "index.html"),
		[]byte(`<html><body><h1>{{ .SiteName }}</h1>bespoke</body></html>`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(modelDir, "styles.css"),
		[]byte("/* bespoke css */"), 0o644))

	r := NewRenderer(dir, testRegistry(), "https://panel.example.com")
	bundle, err := r.Render(minimalRecord())
	require.NoError(t, err)

	assert.Contains(t, string(bundle["index.html"]), "bespoke")
	assert.Equal(t, "/* bespoke css */", string(bundle["styles.css"]))
}

func TestTrackingScriptTargetsSite(t *testing.T) {
	r := NewRenderer(t.TempDir(), testRegistry(), "https://panel.example.com")
	bundle, err := r.Render(minimalRecord())
	require.NoError(t, err)

	js := string(bundle["tracking.js"])
	assert.Contains(t, js, "site_id: 12")
	assert.Contains(t, js, "/api/stats/12/visit")
	assert.True(t, strings.Contains(js, "https://panel.example.com"))
}
