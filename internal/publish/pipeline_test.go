// internal/publish/pipeline_test.go
//
// End-to-end pipeline runs against a stateful fake hosting API, a real
// localizer on a temp dir, and a sqlmock-backed site table.

package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/vitrina/internal/assets"
	"github.com/yanizio/vitrina/internal/config"
	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/render"
)

// fakeHost is a minimal in-memory GitHub: repositories, file contents,
// and Pages, all immediately consistent.
type fakeHost struct {
	mu    sync.Mutex
	repos map[string]bool
	files map[string]int // "repo/path" -> revision, used as SHA
	pages map[string]github.PagesSource
	puts  []string // content paths in PUT order
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		repos: make(map[string]bool),
		files: make(map[string]int),
		pages: make(map[string]github.PagesSource),
	}
}

func (f *fakeHost) handler(t *testing.T) http.HandlerFunc {
	notFound := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		path := r.URL.Path
		switch {
		case path == "/user":
			w.Write([]byte(`{"login":"acme"}`))

		case path == "/user/repos" && r.Method == http.MethodPost:
			var body struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.repos[body.Name] = true
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"name": body.Name})

		case strings.HasPrefix(path, "/live/"):
			w.WriteHeader(http.StatusOK)

		case strings.HasPrefix(path, "/repos/acme/"):
			rest := strings.TrimPrefix(path, "/repos/acme/")
			repo, sub, _ := strings.Cut(rest, "/")

			switch {
			case sub == "":
				if !f.repos[repo] {
					notFound(w)
					return
				}
				json.NewEncoder(w).Encode(map[string]string{"name": repo})

			case strings.HasPrefix(sub, "contents/"):
				file := strings.TrimPrefix(sub, "contents/")
				key := repo + "/" + file
				switch r.Method {
				case http.MethodGet:
					rev, ok := f.files[key]
					if !ok {
						notFound(w)
						return
					}
					json.NewEncoder(w).Encode(map[string]any{"path": file, "sha": fmt.Sprintf("r%d", rev)})
				case http.MethodPut:
					f.files[key]++
					f.puts = append(f.puts, key)
					w.WriteHeader(http.StatusCreated)
					w.Write([]byte(`{}`))
				}

			case sub == "pages" && r.Method == http.MethodGet:
				src, ok := f.pages[repo]
				if !ok {
					notFound(w)
					return
				}
				json.NewEncoder(w).Encode(map[string]any{"status": "built", "source": src})

			case sub == "pages" && (r.Method == http.MethodPost || r.Method == http.MethodPut):
				var body struct {
					Source github.PagesSource `json:"source"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				f.pages[repo] = body.Source
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{}`))

			case sub == "pages/builds" && r.Method == http.MethodPost:
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{}`))

			case sub == "pages/builds/latest":
				json.NewEncoder(w).Encode(map[string]string{"status": "built"})

			default:
				t.Errorf("unexpected request %s %s", r.Method, path)
			}

		default:
			t.Errorf("unexpected request %s %s", r.Method, path)
		}
	}
}

var siteColumns = []string{
	"id", "name", "model_type", "description",
	"hero_title", "hero_subtitle", "hero_image", "about_text", "about_image",
	"contact_email", "contact_phone", "contact_address", "whatsapp_number",
	"facebook_url", "instagram_url", "tiktok_url",
	"logo_url", "primary_color", "secondary_color",
	"products_json", "gallery_json", "supporters_json",
	"custom_domain", "github_repo", "github_url", "is_published",
	"created_at", "updated_at",
}

func siteRow(galleryJSON string, repo any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(siteColumns).AddRow(
		uint64(7), "Cafetal", "cafeteria", "",
		"", "", "", "", "",
		"", "", "", "",
		"", "", "",
		"", "", "",
		"", galleryJSON, "",
		nil, repo, nil, false,
		now, now,
	)
}

func newTestPipeline(t *testing.T, host *fakeHost, db *sqlx.DB, uploads string) (*Pipeline, string) {
	t.Helper()
	srv := httptest.NewServer(host.handler(t))
	t.Cleanup(srv.Close)

	localizer, err := assets.New(uploads, time.Second)
	require.NoError(t, err)

	registry := render.NewRegistry(render.Model{
		ID: "cafeteria", Label: "Cafetería", Icon: "☕",
		Palette: render.Palette{Primary: "#4B2E2B", Secondary: "#A0785A"},
	})
	renderer := render.NewRenderer(t.TempDir(), registry, "https://panel.test")

	cfg := &config.Config{
		GitHub: config.GitHub{
			Token: "t", Owner: "acme",
			APIBaseURL: srv.URL, PagesBaseURL: srv.URL + "/live",
		},
		Publish: config.Publish{
			RepoVerifyTries: 3, RepoVerifyDelay: time.Millisecond,
			BuildPollEvery: time.Millisecond, BuildTimeout: time.Second,
			LivenessPollEvery: time.Millisecond, LivenessTimeout: time.Second,
		},
	}

	gh := github.New(srv.URL, "t", "acme", 5*time.Second)
	p, err := New(context.Background(), cfg, db, localizer, renderer, gh)
	require.NoError(t, err)
	return p, srv.URL
}

func TestPipelinePublishAndRepublish(t *testing.T) {
	// Image host with per-path fetch counters.
	var (
		fetchMu sync.Mutex
		fetches int
	)
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetchMu.Lock()
		fetches++
		fetchMu.Unlock()
		if strings.HasSuffix(r.URL.Path, ".png") {
			w.Header().Set("Content-Type", "image/png")
		} else {
			w.Header().Set("Content-Type", "image/jpeg")
		}
		w.Write([]byte("imagebytes"))
	}))
	t.Cleanup(imgSrv.Close)

	refA := imgSrv.URL + "/img/a.jpg"
	refB := imgSrv.URL + "/img/b.png"
	localA := assets.CanonicalName(refA)
	localB := assets.CanonicalName(refB)

	galleryRemote, _ := json.Marshal([]string{refA, refB})
	galleryLocal, _ := json.Marshal([]string{localA, localB})

	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })
	db := sqlx.NewDb(rawDB, "sqlmock")

	uploads := t.TempDir()
	host := newFakeHost()
	p, srvURL := newTestPipeline(t, host, db, uploads)

	liveURL := srvURL + "/live/cafetal-7/"

	// First publish: repo created and named, assets downloaded, refs
	// rewritten and persisted.
	mock.ExpectQuery(`(?s)SELECT.+FROM site WHERE id = \? LIMIT 1`).
		WithArgs(uint64(7)).
		WillReturnRows(siteRow(string(galleryRemote), nil))
	mock.ExpectExec(`(?s)UPDATE site SET github_repo.+github_repo IS NULL`).
		WithArgs("cafetal-7", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE site SET github_url`).
		WithArgs(liveURL, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE site SET.+hero_image`).
		WithArgs("", "", "", "", string(galleryLocal), "", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := p.Run(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "cafetal-7", res.RepoName)
	assert.Equal(t, liveURL, res.URL)

	assert.Equal(t, 2, fetches, "two gallery images, two downloads")
	for _, local := range []string{localA, localB} {
		name := strings.TrimPrefix(local, "images/")
		_, statErr := os.Stat(filepath.Join(uploads, name))
		assert.NoError(t, statErr, "localized file %s must exist", name)
		assert.Contains(t, host.puts, "cafetal-7/"+local)
	}
	assert.Contains(t, host.puts, "cafetal-7/index.html")
	assert.Contains(t, host.puts, "cafetal-7/styles.css")
	assert.Contains(t, host.puts, "cafetal-7/tracking.js")

	// Republish with the persisted row: same repo, zero new downloads.
	mock.ExpectQuery(`(?s)SELECT.+FROM site WHERE id = \? LIMIT 1`).
		WithArgs(uint64(7)).
		WillReturnRows(siteRow(string(galleryLocal), "cafetal-7"))
	mock.ExpectExec(`(?s)UPDATE site SET github_url`).
		WithArgs(liveURL, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE site SET.+hero_image`).
		WithArgs("", "", "", "", string(galleryLocal), "", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err = p.Run(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "cafetal-7", res.RepoName)
	assert.Equal(t, 2, fetches, "republish must not re-download localized assets")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelineCustomDomain(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })
	db := sqlx.NewDb(rawDB, "sqlmock")

	host := newFakeHost()
	p, _ := newTestPipeline(t, host, db, t.TempDir())

	now := time.Now()
	row := sqlmock.NewRows(siteColumns).AddRow(
		uint64(7), "Cafetal", "cafeteria", "",
		"", "", "", "", "",
		"", "", "", "",
		"", "", "",
		"", "", "",
		"", "", "",
		"cafetal.mx", nil, nil, false,
		now, now,
	)

	mock.ExpectQuery(`(?s)SELECT.+FROM site WHERE id = \? LIMIT 1`).
		WithArgs(uint64(7)).
		WillReturnRows(row)
	mock.ExpectExec(`(?s)UPDATE site SET github_repo.+github_repo IS NULL`).
		WithArgs("cafetal-7", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE site SET github_url`).
		WithArgs("https://cafetal.mx/", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE site SET.+hero_image`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := p.Run(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "https://cafetal.mx/", res.URL)
	assert.Contains(t, host.puts, "cafetal-7/CNAME", "CNAME must be pushed before activation")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, nil, nil, nil, nil)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, "config", StageOf(err))
}

func TestNewRejectsOwnerMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"login":"somebody-else"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{GitHub: config.GitHub{Token: "t", Owner: "acme"}}
	gh := github.New(srv.URL, "t", "acme", time.Second)

	_, err := New(context.Background(), cfg, nil, nil, nil, gh)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "somebody-else")
}

func TestTrackerLifecycle(t *testing.T) {
	tr := newTracker()

	assert.Equal(t, PhaseIdle, tr.get(1).Phase)
	require.True(t, tr.begin(1))
	assert.False(t, tr.begin(1), "second begin while running must be rejected")
	assert.True(t, tr.begin(2), "other sites are independent")

	tr.succeed(1, "https://acme.github.io/shop-1/", "")
	st := tr.get(1)
	assert.Equal(t, PhaseDone, st.Phase)
	assert.Equal(t, "https://acme.github.io/shop-1/", st.URL)
	require.True(t, tr.begin(1), "finished site can publish again")

	tr.fail(2, ErrPublishInFlight)
	assert.Equal(t, PhaseFailed, tr.get(2).Phase)
}
