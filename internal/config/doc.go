// Package config loads furrow's runtime configuration.
//
// # Sources
//
// The base URL of the irrigation backend is environment-specific. It is
// resolved from, in increasing precedence:
//
//  1. Built-in default: http://127.0.0.1:5000/api
//  2. TOML file, default ~/.config/furrow/config.toml (api_url)
//  3. dotenv file, default ./.env (FURROW_API_URL)
//  4. Process environment (FURROW_API_URL)
//
// The -api flag in cmd/furrow overrides all of them. The resolved value is
// handed to irrigation.NewClient explicitly; nothing reads it globally.
//
// # TOML Format
//
//	api_url = "http://farm.local:5000/api"
//	log_file = "~/.local/state/furrow/furrow.log"
//	request_timeout = "10s"   # empty means no client timeout
//
// All fields are optional. Tilde expansion is performed on log_file.
//
// # Error Handling
//
// A missing config or dotenv file is not an error. Unreadable files, invalid
// TOML and unparsable durations are.
package config
