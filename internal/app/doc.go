// Package app is the composition root for furrow.
//
// # Overview
//
// Run wires configuration, logging, the irrigation client and the UI, then
// blocks in the Bubble Tea program until the user quits or the context is
// cancelled.
//
// # Startup
//
//  1. Load ~/.config/furrow/config.toml (defaults when missing)
//  2. Overlay FURROW_API_URL from ./.env, then from the process environment
//  3. Apply the -api flag, if given
//  4. Open the file logger at the configured log path
//  5. Build the HTTP transport and client for the resolved base URL
//  6. Load UI preferences and start the TUI on the requested view
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> loadConfig()              TOML, .env, env, flag
//	       ├─────> logging.Open()            File logger
//	       ├─────> irrigation.NewHTTPTransport()
//	       ├─────> prefs.Load()              Theme
//	       └─────> ui.Run()                  TUI (blocks)
//
// There is no background polling and no shared cache. Each view issues its
// own requests through the client when it is activated or a key is pressed.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file present but unreadable or invalid
//   - Unreadable .env file
//   - Invalid base URL
//   - Log file cannot be opened
//
// Request failures are never fatal. Views show them and stay usable.
package app
