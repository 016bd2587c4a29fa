package config

import (
	"flag"
	"os"
	"time"

	"quranstudy/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-p string   cloud project id (empty disables the remote store)
//	-cred string path to the service-account credentials file
//	-k string   auth REST API key
//	-d string   path to the local database file
//	-u string   content API base URL
//	-t int      content API timeout in seconds
//	-w          enable the realtime profile subscription
//
// os.Args is filtered through flagx.FilterArgs so flags owned by other
// components are left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-p", "-cred", "-k", "-d", "-u", "-t", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ProjectID, "p", cfg.ProjectID, "cloud project id")
	fs.StringVar(&cfg.CredentialsFile, "cred", cfg.CredentialsFile, "service account credentials file")
	fs.StringVar(&cfg.AuthAPIKey, "k", cfg.AuthAPIKey, "auth API key")
	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "local database path")
	fs.StringVar(&cfg.ContentAPIBaseURL, "u", cfg.ContentAPIBaseURL, "content API base URL")
	contentTimeout := fs.Int("t", int(cfg.ContentTimeout.Seconds()), "content API timeout (in seconds)")
	fs.BoolVar(&cfg.Watch, "w", cfg.Watch, "watch the remote profile for changes")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ContentTimeout = time.Duration(*contentTimeout) * time.Second
}
