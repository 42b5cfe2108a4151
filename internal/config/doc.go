// Package config loads the EasyLoft client configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/easyloft/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. EASYLOFT_API_URL, when set, replaces api_url
//
// # Default Values
//
//   - Config file: ~/.config/easyloft/config.toml
//   - API base URL: http://localhost:3000
//   - Data directory: ~/.local/share/easyloft
//   - Session token: <data_dir>/session.toml
//   - Log file: <data_dir>/easyloft.log
//   - Request timeout: 10 seconds
//   - Background refresh: every 60 seconds
//
// # TOML Format
//
//	api_url = "https://api.easyloft.example"
//	data_dir = "~/.local/share/easyloft"
//	request_timeout_seconds = 10
//	refresh_seconds = 60      # 0 or negative disables background refresh
//	log_level = "info"        # debug, info, warn, error
//	log_file = "~/easyloft.log"
//
// Every field is optional. Tilde expansion is performed on data_dir and
// log_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//
// A missing config file is not an error, so the client runs against a local
// backend without any setup.
package config
