// Package app provides the orchestration layer for the EasyLoft client.
//
// # Overview
//
// This package is the composition root: it loads configuration, builds the
// logger, API client, services and stores, restores the saved session and
// hands everything to the terminal UI.
//
// # Startup
//
//  1. Load ~/.config/easyloft/config.toml (missing file means defaults)
//  2. Open the zap log file under the data directory
//  3. Load UI preferences (theme, pigeon filter)
//  4. Open the persisted session token
//  5. Build the REST client, the three services and the three stores
//  6. Validate the stored token with GET /users/me
//  7. Start the background poller when refreshing is enabled
//  8. Run the TUI until the user quits or the context is cancelled
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()
//	       ├─────> logging.New()
//	       ├─────> tokenstore.Open()
//	       ├─────> api.NewClient()
//	       ├─────> state.New*Store()
//	       ├─────> AuthStore.CheckAuth()
//	       ├─────> StartPoller()       Refresh lofts and pigeons
//	       └─────> ui.Run()            Start TUI (blocks)
//
// # Background Refresh
//
// The poller calls Refresh on the loft and pigeon stores while a session is
// active. The pigeon store repeats its last list fetch, so a loft-scoped view
// stays scoped. Failures are logged and stretch the interval (doubling, up to
// five minutes); the first success resets it. The UI re-reads the store
// snapshots once a second, so refreshed data shows up without input.
//
// # Errors
//
// Run returns configuration, logging and client construction failures.
// Network failures never stop the program: they land in the store snapshots
// and are shown in the header.
package app
