// Package config loads runtime configuration for the study CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the content timeout, so the
// value can be either a string like "15s" or integer nanoseconds:
//
//	{
//	  "project_id": "my-project",
//	  "auth_api_key": "AIza...",
//	  "local_db_path": "quranstudy.db",
//	  "content_timeout": "15s",
//	  "watch": true
//	}
//
// Note: This package does not read environment variables directly; use
// the JSON file or flags to configure values.
package config
