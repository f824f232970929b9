// cmd/web/main.go
//
// Vitrina – control-panel HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start daily rotating logger (tees to console when running in a TTY).
//
//  2. Load conf/global.yaml + VITRINA_ env overrides, resolve vault:
//     secret references (GitHub token).
//
//  3. Open the panel DB and log the site count as an early sanity check.
//
//  4. Build the publish pipeline: asset localizer, site renderer (model
//     registry from conf/models.yaml), GitHub client.  Credential
//     verification happens here; a bad token stops the boot.
//
//  5. Mount the API router, Prometheus /metrics, health check, and the
//     static /images and /uploads mounts, then serve until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/vitrina/internal/assets"
	"github.com/yanizio/vitrina/internal/config"
	"github.com/yanizio/vitrina/internal/database"
	"github.com/yanizio/vitrina/internal/github"
	"github.com/yanizio/vitrina/internal/logger"
	"github.com/yanizio/vitrina/internal/middleware"
	"github.com/yanizio/vitrina/internal/panel"
	"github.com/yanizio/vitrina/internal/publish"
	"github.com/yanizio/vitrina/internal/render"
	"github.com/yanizio/vitrina/internal/server"
	"github.com/yanizio/vitrina/internal/site"
	"github.com/yanizio/vitrina/internal/vault"
	"github.com/yanizio/vitrina/internal/visit"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration and secrets ───────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	var vaultCli *vault.Client
	if strings.HasPrefix(cfg.GitHub.Token, "vault:") {
		vaultCli, err = vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
	}
	if err := config.ResolveSecrets(ctx, cfg, vaultCli); err != nil {
		logOut.Fatalf("resolve secrets: %v", err)
	}

	//
	// ── 2.  Panel DB connect ────────────────────────────────────────────
	//
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		logOut.Fatalf("connect db: %v", err)
	}
	defer db.Close()

	if n, err := site.CountAll(ctx, db); err == nil {
		logOut.Infow("db online", "sites", n)
	}

	//
	// ── 3.  Publish pipeline ────────────────────────────────────────────
	//
	localizer, err := assets.New(cfg.Paths.Uploads, cfg.Publish.AssetTimeout)
	if err != nil {
		logOut.Fatalf("uploads dir: %v", err)
	}

	registry, err := render.LoadRegistry(filepath.Join(cfg.Paths.Root, "conf", "models.yaml"))
	if err != nil {
		logOut.Fatalf("model registry: %v", err)
	}
	renderer := render.NewRenderer(cfg.Paths.Templates, registry, cfg.Stats.PublicBaseURL)

	gh := github.New(cfg.GitHub.APIBaseURL, cfg.GitHub.Token, cfg.GitHub.Owner, cfg.Publish.HTTPTimeout)
	pipeline, err := publish.New(ctx, cfg, db, localizer, renderer, gh)
	if err != nil {
		logOut.Fatalf("publish pipeline: %v", err)
	}

	geo := visit.OpenGeo(cfg.GeoIP.DBPath)
	defer geo.Close()

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)

	panel.New(db, pipeline, geo, cfg.Paths.Uploads).Routes(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	uploadsFS := http.FileServer(http.Dir(cfg.Paths.Uploads))
	r.Handle("/images/*", http.StripPrefix("/images/", uploadsFS))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadsFS))

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Warnw("shutdown incomplete", "err", err)
	}
}
