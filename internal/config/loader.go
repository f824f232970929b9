// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `conf/.env` — dotenv values.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `VITRINA_`, where `__` maps to “.”
     (e.g., `VITRINA_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
validated, and enriched with the runtime root path.  `ResolveSecrets()`
then swaps any `vault:` reference for the secret it names.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/vitrina/internal/vault"
)

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves VITRINA_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("VITRINA_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, validates, and returns Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: VITRINA_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("VITRINA_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	cfg.Paths.Uploads = filepath.Join(root, "uploads")
	cfg.Paths.Templates = filepath.Join(root, "templates_base")
	cfg.applyPublishDefaults()

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"github_owner", cfg.GitHub.Owner,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── secret resolution ───────────────────────────*/

// ResolveSecrets replaces every `vault:secret/path#key` value in cfg with
// the secret it names.  A nil client leaves literals untouched and errors
// on any remaining vault: reference, so a missing Vault setup surfaces as
// a configuration problem rather than an invalid-credential one.
func ResolveSecrets(ctx context.Context, cfg *Config, cli *vault.Client) error {
	resolved, err := resolveValue(ctx, cli, cfg.GitHub.Token)
	if err != nil {
		return fmt.Errorf("github.token: %w", err)
	}
	cfg.GitHub.Token = resolved
	return nil
}

func resolveValue(ctx context.Context, cli *vault.Client, val string) (string, error) {
	ref, ok := strings.CutPrefix(val, "vault:")
	if !ok {
		return val, nil
	}
	if cli == nil {
		return "", fmt.Errorf("value references Vault but no Vault client is configured")
	}
	path, key, ok := strings.Cut(ref, "#")
	if !ok {
		return "", fmt.Errorf("malformed vault reference %q (want vault:path#key)", val)
	}
	return cli.GetKV(ctx, path, key, 0)
}
