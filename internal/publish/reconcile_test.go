// internal/publish/reconcile_test.go

package publish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/vitrina/internal/github"
)

func ghClient(t *testing.T, handler http.HandlerFunc) *github.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return github.New(srv.URL, "t", "acme", 5*time.Second)
}

func TestEnsureRepositoryLookupHitNeverCreates(t *testing.T) {
	var creates atomic.Int32
	gh := ghClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/shop-1":
			w.Write([]byte(`{"name":"shop-1","default_branch":"main"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			creates.Add(1)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"name":"shop-1"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	rec := NewReconciler(gh, 3, time.Millisecond)
	name, existed, warn, err := rec.EnsureRepository(context.Background(), "shop-1", "desc")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", name)
	assert.True(t, existed)
	assert.Empty(t, warn)
	assert.Equal(t, int32(0), creates.Load(), "an existing repository must not be touched")
}

func TestEnsureRepositoryCreateThenVerify(t *testing.T) {
	var created atomic.Bool
	var getsAfterCreate atomic.Int32

	gh := ghClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/shop-1":
			if !created.Load() {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			// Propagation lag: the first two reads after creation miss.
			if getsAfterCreate.Add(1) <= 2 {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			w.Write([]byte(`{"name":"shop-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			created.Store(true)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"name":"shop-1"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	rec := NewReconciler(gh, 8, time.Millisecond)
	name, existed, warn, err := rec.EnsureRepository(context.Background(), "shop-1", "desc")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", name)
	assert.False(t, existed)
	assert.Empty(t, warn)
	assert.Equal(t, int32(3), getsAfterCreate.Load())
}

func TestEnsureRepositoryCreateRaceResolvesToExisting(t *testing.T) {
	var gets atomic.Int32
	gh := ghClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/shop-1":
			if gets.Add(1) == 1 {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			w.Write([]byte(`{"name":"shop-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			// Concurrent creator won between our read and this write.
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"name already exists on this account"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	rec := NewReconciler(gh, 3, time.Millisecond)
	name, existed, warn, err := rec.EnsureRepository(context.Background(), "shop-1", "desc")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", name)
	assert.True(t, existed)
	assert.Empty(t, warn)
}

func TestEnsureRepositoryUnverifiedContinuesWithWarning(t *testing.T) {
	gh := ghClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"name":"shop-1"}`))
		}
	})

	rec := NewReconciler(gh, 3, time.Millisecond)
	name, existed, warn, err := rec.EnsureRepository(context.Background(), "shop-1", "desc")
	require.NoError(t, err, "exhausted verification is a warning, not a failure")
	assert.Equal(t, "shop-1", name)
	assert.False(t, existed)
	assert.NotEmpty(t, warn)
}

func TestEnsureRepositoryIdempotentFinalName(t *testing.T) {
	var created atomic.Bool
	gh := ghClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/taller-9":
			if !created.Load() {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			w.Write([]byte(`{"name":"taller-9"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			created.Store(true)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"name":"taller-9"}`))
		}
	})

	rec := NewReconciler(gh, 3, time.Millisecond)

	first, _, _, err := rec.EnsureRepository(context.Background(), "taller-9", "")
	require.NoError(t, err)
	second, existed, _, err := rec.EnsureRepository(context.Background(), "taller-9", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, existed)
}

func TestDeleteRepositoryToleratesMissing(t *testing.T) {
	gh := ghClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	rec := NewReconciler(gh, 1, time.Millisecond)
	assert.NoError(t, rec.DeleteRepository(context.Background(), "gone-4"))
}
