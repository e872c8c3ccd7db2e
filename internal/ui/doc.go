// Package ui implements the furrow terminal interface with Bubble Tea.
//
// # Views
//
// Three views are reachable from the header tabs:
//
//   - Fields: the home view. Lists fields on activation; enter opens a
//     detail panel backed by a single getField request.
//   - Sensors: fetches sensor readings on activation and renders them in a
//     scrollable viewport. Payloads that are not the usual reading list are
//     shown as indented JSON.
//   - Irrigation: sends start (s) or stop (x) commands. Nothing is requested
//     on activation and the backend status is shown only once a command
//     settles.
//
// # Request Lifecycle
//
// Each view owns the data it fetched. Switching views discards that data
// and bumps the view's sequence number, so results still in flight for a
// detached view are dropped when they arrive. Reloading (r) keeps previous
// rows visible until the new result settles; on failure they stay visible
// beside the error.
//
// # Key Bindings
//
// Global: 1/2/3 or tab/shift+tab switch views, ? toggles help, T cycles
// themes, q or ctrl+c quits.
package ui
