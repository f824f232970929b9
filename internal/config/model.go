// internal/config/model.go
//
// Typed configuration model for Vitrina.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `VITRINA_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling (see ResolveSecrets), so
// flat files and git history never carry the GitHub token itself.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-panel DSN.  MySQL wire protocol; see
// internal/database for pool defaults.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// GitHub section
//

// GitHub holds the hosting-account identity and endpoint overrides.  Token
// may be a literal or a `vault:secret/data/path#key` reference.  The URL
// overrides exist so tests can point the pipeline at an httptest server;
// production leaves them empty and gets the public endpoints.
type GitHub struct {
	Token        string `koanf:"token"`
	Owner        string `koanf:"owner"`
	APIBaseURL   string `koanf:"api_base_url"`
	PagesBaseURL string `koanf:"pages_base_url"`
}

//
// Publish section
//

// Publish bundles every timeout, poll interval, and retry cap used by the
// pipeline.  Zero values are replaced by the defaults below so a minimal
// global.yaml still yields a working pipeline.
type Publish struct {
	HTTPTimeout       time.Duration `koanf:"http_timeout"`
	AssetTimeout      time.Duration `koanf:"asset_timeout"`
	RepoVerifyTries   int           `koanf:"repo_verify_tries"`
	RepoVerifyDelay   time.Duration `koanf:"repo_verify_delay"`
	BuildPollEvery    time.Duration `koanf:"build_poll_every"`
	BuildTimeout      time.Duration `koanf:"build_timeout"`
	LivenessPollEvery time.Duration `koanf:"liveness_poll_every"`
	LivenessTimeout   time.Duration `koanf:"liveness_timeout"`
}

// Stats configures the endpoint generated tracking scripts report to.
type Stats struct {
	PublicBaseURL string `koanf:"public_base_url"`
}

// GeoIP points at an optional MaxMind database for visit enrichment.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or VITRINA_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root      string // VITRINA_ROOT or discovered parent
	Uploads   string // <root>/uploads – localized assets and admin uploads
	Templates string // <root>/templates_base – per-model site templates
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load().
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	GitHub   GitHub   `koanf:"github"`
	Publish  Publish  `koanf:"publish"`
	Stats    Stats    `koanf:"stats"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

// applyPublishDefaults fills zero-valued pipeline tunables.  Caps mirror
// the remote host's observed propagation behavior: repository reads lag
// creation by a few seconds, and Pages builds take low minutes.
func (c *Config) applyPublishDefaults() {
	p := &c.Publish
	if p.HTTPTimeout <= 0 {
		p.HTTPTimeout = 15 * time.Second
	}
	if p.AssetTimeout <= 0 {
		p.AssetTimeout = 20 * time.Second
	}
	if p.RepoVerifyTries <= 0 {
		p.RepoVerifyTries = 8
	}
	if p.RepoVerifyDelay <= 0 {
		p.RepoVerifyDelay = 3 * time.Second
	}
	if p.BuildPollEvery <= 0 {
		p.BuildPollEvery = 5 * time.Second
	}
	if p.BuildTimeout <= 0 {
		p.BuildTimeout = 3 * time.Minute
	}
	if p.LivenessPollEvery <= 0 {
		p.LivenessPollEvery = 6 * time.Second
	}
	if p.LivenessTimeout <= 0 {
		p.LivenessTimeout = 3 * time.Minute
	}
}
