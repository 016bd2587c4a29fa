package config

import (
	"encoding/json"
	"os"

	"quranstudy/internal/flagx"
	"quranstudy/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so JSON can specify the content timeout
// either as a string like "15s" or as integer nanoseconds.
type JsonConfig struct {
	ProjectID         string         `json:"project_id"`
	CredentialsFile   string         `json:"credentials_file"`
	AuthAPIKey        string         `json:"auth_api_key"`
	AuthEndpoint      string         `json:"auth_endpoint"`
	LocalDBPath       string         `json:"local_db_path"`
	ContentAPIBaseURL string         `json:"content_api_base_url"`
	ContentTimeout    timex.Duration `json:"content_timeout"`
	Watch             bool           `json:"watch"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flags. Absent file path means no JSON is loaded; read or
// unmarshal errors panic, startup cannot proceed on a broken config.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ProjectID = jc.ProjectID
	cfg.CredentialsFile = jc.CredentialsFile
	cfg.AuthAPIKey = jc.AuthAPIKey
	if jc.AuthEndpoint != "" {
		cfg.AuthEndpoint = jc.AuthEndpoint
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.ContentAPIBaseURL != "" {
		cfg.ContentAPIBaseURL = jc.ContentAPIBaseURL
	}
	if jc.ContentTimeout.Duration > 0 {
		cfg.ContentTimeout = jc.ContentTimeout.Duration
	}
	cfg.Watch = jc.Watch
}
