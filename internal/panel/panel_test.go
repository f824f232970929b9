// internal/panel/panel_test.go
//
// Handler tests over a real chi router, sqlmock for the database, and a
// scripted hosting API where the pipeline is involved.

package panel

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/vitrina/internal/assets"
	"github.com/yanizio/vitrina/internal/config"
	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/publish"
	"github.com/yanizio/vitrina/internal/render"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

// stubPipeline builds a real pipeline against a hosting stub that never
// gets exercised beyond credential verification.
func stubPipeline(t *testing.T, db *sqlx.DB) *publish.Pipeline {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user" {
			w.Write([]byte(`{"login":"acme"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	t.Cleanup(srv.Close)

	localizer, err := assets.New(t.TempDir(), time.Second)
	require.NoError(t, err)
	renderer := render.NewRenderer(t.TempDir(), render.NewRegistry(), "https://panel.test")

	cfg := &config.Config{
		GitHub: config.GitHub{Token: "t", Owner: "acme", APIBaseURL: srv.URL},
		Publish: config.Publish{
			RepoVerifyTries: 1, RepoVerifyDelay: time.Millisecond,
			BuildPollEvery: time.Millisecond, BuildTimeout: time.Second,
			LivenessPollEvery: time.Millisecond, LivenessTimeout: time.Second,
		},
	}
	gh := github.New(srv.URL, "t", "acme", time.Second)
	p, err := publish.New(context.Background(), cfg, db, localizer, renderer, gh)
	require.NoError(t, err)
	return p
}

func newRouter(t *testing.T, db *sqlx.DB, uploadsDir string) chi.Router {
	t.Helper()
	panel := New(db, stubPipeline(t, db), nil, uploadsDir)
	r := chi.NewRouter()
	panel.Routes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateSiteRejectsInvalidPayload(t *testing.T) {
	db, _ := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	rec := doJSON(t, r, http.MethodPost, "/api/sites", map[string]any{
		"name":          "Cafetal",
		"model_type":    "cafeteria",
		"contact_email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ContactEmail")
}

func TestCreateSiteInserts(t *testing.T) {
	db, mock := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	mock.ExpectExec(`(?s)INSERT INTO site`).
		WillReturnResult(sqlmock.NewResult(5, 1))

	rec := doJSON(t, r, http.MethodPost, "/api/sites", map[string]any{
		"name":       "Cafetal",
		"model_type": "cafeteria",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view struct {
		ID       uint64          `json:"id"`
		Products json.RawMessage `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, uint64(5), view.ID)
	assert.Equal(t, "[]", string(view.Products), "JSON lists never come back null")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSiteNotFound(t *testing.T) {
	db, mock := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	mock.ExpectQuery(`(?s)SELECT.+FROM site WHERE id`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, r, http.MethodGet, "/api/sites/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSiteRejectsBadID(t *testing.T) {
	db, _ := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	rec := doJSON(t, r, http.MethodGet, "/api/sites/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordVisitEnrichesAndStores(t *testing.T) {
	db, mock := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	mock.ExpectExec(`(?s)INSERT INTO visit`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/stats/7/visit",
		strings.NewReader(`{"referrer":"https://google.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.RemoteAddr = "203.0.113.9:54321"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"),
		"the beacon posts cross-origin")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishTriggerAndStatus(t *testing.T) {
	db, mock := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	// The trigger checks existence before starting anything.
	mock.ExpectQuery(`(?s)SELECT.+FROM site WHERE id`).
		WithArgs(uint64(3)).
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, r, http.MethodPost, "/api/sites/3/publish", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Status for an untouched site is idle.
	rec = doJSON(t, r, http.MethodGet, "/api/sites/3/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st publish.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, publish.PhaseIdle, st.Phase)
}

func TestUploadImage(t *testing.T) {
	db, _ := mockDB(t)
	uploads := t.TempDir()
	r := newRouter(t, db, uploads)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "logo.png")
	require.NoError(t, err)
	part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasSuffix(resp["filename"], ".png"))
	assert.Equal(t, "images/"+resp["filename"], resp["ref"])

	_, statErr := os.Stat(filepath.Join(uploads, resp["filename"]))
	assert.NoError(t, statErr)
}

func TestUploadImageRejectsUnknownType(t *testing.T) {
	db, _ := mockDB(t)
	r := newRouter(t, db, t.TempDir())

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "payload.exe")
	require.NoError(t, err)
	part.Write([]byte("MZ"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFillSevenDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	got := fillSevenDays(nil, now)
	require.Len(t, got, 7)
	assert.Equal(t, "2026-03-04", got[0].Date)
	assert.Equal(t, "2026-03-10", got[6].Date)
	for _, d := range got {
		assert.Zero(t, d.Visits)
	}
}
