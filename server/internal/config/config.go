package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Published spreadsheet exports the availability view is computed from.
const (
	DefaultLocationsURL   = "https://docs.google.com/spreadsheets/d/1gJGJ_IGqybrN2C0O01uafzmJ43byKjGbAyi894hz2Lo/gviz/tq?tqx=out:csv&sheet=Locations"
	DefaultConnectionsURL = "https://docs.google.com/spreadsheets/d/1gJGJ_IGqybrN2C0O01uafzmJ43byKjGbAyi894hz2Lo/gviz/tq?tqx=out:csv&sheet=Connections"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8501
	DefaultCacheTTL       = 60 * time.Second
	DefaultSessionIdleTTL = 12 * time.Hour
	DefaultCookieName     = "locavail_session"
	DefaultSecretEnv      = "LOCAVAIL_SESSION_SECRET"
)

// DefaultUsedColumns are the connections-table columns whose values mark a
// location as taken.
var DefaultUsedColumns = []string{"Current location", "Pr. Location 1"}

// Config is the top-level configuration parsed from config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Sheets SheetsConfig `yaml:"sheets"`
}

// ServerConfig holds HTTP listener and session settings.
type ServerConfig struct {
	// HTTPPort is the port the page, JSON API, WebSocket hub and metrics
	// listen on (default 8501).
	HTTPPort int `yaml:"http_port"`

	// Session controls the per-browser state holding master list edits.
	Session SessionConfig `yaml:"session"`
}

// SessionConfig controls cookie sessions.
type SessionConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string `yaml:"cookie_name"`

	// SecretEnv names the environment variable holding the cookie signing
	// key. When the variable is unset a random key is generated at startup
	// and sessions do not survive a restart.
	SecretEnv string `yaml:"secret_env"`

	// IdleTTL is how long a session's edits are kept after its last request.
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// Secret returns the cookie signing key resolved from the environment.
func (s SessionConfig) Secret() string {
	if s.SecretEnv == "" {
		return ""
	}
	return os.Getenv(s.SecretEnv)
}

// SheetsConfig describes the two remote CSV sources and how they are fetched.
type SheetsConfig struct {
	// LocationsURL is the CSV export of the location catalog sheet.
	LocationsURL string `yaml:"locations_url"`

	// ConnectionsURL is the CSV export of the connections/assignment sheet.
	ConnectionsURL string `yaml:"connections_url"`

	// UsedColumns are the connections columns read to build the used set.
	UsedColumns []string `yaml:"used_columns"`

	// CacheTTL is the freshness window for fetched tables (default 60s).
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Timeout bounds a single fetch. Zero means no client-side timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Auth is only needed for exports that are not published publicly.
	Auth SheetsAuth `yaml:"auth"`
}

// SheetsAuth configures an optional bearer token for the CSV exports.
type SheetsAuth struct {
	// TokenEnv is the name of the environment variable that holds the token.
	TokenEnv string `yaml:"token_env"`
}

// Token returns the bearer token resolved from the environment.
func (a SheetsAuth) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Session: SessionConfig{
				CookieName: DefaultCookieName,
				SecretEnv:  DefaultSecretEnv,
				IdleTTL:    DefaultSessionIdleTTL,
			},
		},
		Sheets: SheetsConfig{
			LocationsURL:   DefaultLocationsURL,
			ConnectionsURL: DefaultConnectionsURL,
			UsedColumns:    append([]string(nil), DefaultUsedColumns...),
			CacheTTL:       DefaultCacheTTL,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.Session.CookieName == "" {
		return fmt.Errorf("server.session.cookie_name is required")
	}
	if cfg.Server.Session.IdleTTL <= 0 {
		return fmt.Errorf("server.session.idle_ttl must be positive")
	}
	for key, raw := range map[string]string{
		"sheets.locations_url":   cfg.Sheets.LocationsURL,
		"sheets.connections_url": cfg.Sheets.ConnectionsURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s %q must be an absolute http(s) URL", key, raw)
		}
	}
	if len(cfg.Sheets.UsedColumns) == 0 {
		return fmt.Errorf("sheets.used_columns must name at least one column")
	}
	for i, c := range cfg.Sheets.UsedColumns {
		if c == "" {
			return fmt.Errorf("sheets.used_columns[%d] is empty", i)
		}
	}
	if cfg.Sheets.CacheTTL < 0 {
		return fmt.Errorf("sheets.cache_ttl must not be negative")
	}
	if cfg.Sheets.Timeout < 0 {
		return fmt.Errorf("sheets.timeout must not be negative")
	}
	return nil
}
