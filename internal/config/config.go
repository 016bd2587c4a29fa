package config

import "time"

// Config holds runtime settings for the study CLI.
//
// An empty ProjectID disables the remote store entirely; the session
// then runs local-only even for signed-in users.
type Config struct {
	ProjectID         string
	CredentialsFile   string
	AuthAPIKey        string
	AuthEndpoint      string
	LocalDBPath       string
	ContentAPIBaseURL string
	ContentTimeout    time.Duration
	Watch             bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ProjectID = ""
	c.CredentialsFile = ""
	c.AuthAPIKey = ""
	c.AuthEndpoint = "https://identitytoolkit.googleapis.com"
	c.LocalDBPath = "quranstudy.db"
	c.ContentAPIBaseURL = "https://api.alquran.cloud"
	c.ContentTimeout = 15 * time.Second
	c.Watch = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
