// Package irrigation provides the access layer for the irrigation backend API.
//
// # Overview
//
// The package maps five backend operations onto typed Go calls. Each call
// issues exactly one HTTP request with a fixed verb and path:
//
//   - ListFields:         GET  {base}/fields
//   - GetField:           GET  {base}/fields/{id}
//   - ListSensorReadings: GET  {base}/sensors
//   - StartIrrigation:    POST {base}/irrigation/start  (body {})
//   - StopIrrigation:     POST {base}/irrigation/stop   (body {})
//
// # Architecture
//
//   - transport.go: Transport interface and the net/http implementation
//   - client.go: Client, the Service implementation built on a Transport
//   - types.go: Field, SensorReadings, IrrigationStatus
//   - errors.go: error taxonomy and classification helpers
//
// The Transport is injected so tests and alternative backends can replace
// the network:
//
//	client := irrigation.NewClientWithTransport(fakeTransport)
//
// Production code builds the HTTP transport from the configured base URL:
//
//	client, err := irrigation.NewClient("http://127.0.0.1:5000/api",
//		irrigation.WithLogger(logger))
//
// Any path on the base URL is kept, so "{base}/fields" against the base above
// requests http://127.0.0.1:5000/api/fields.
//
// # Error Handling
//
// Failures are returned unchanged to the caller. Nothing is retried.
//
//   - No response (dial, DNS, context cancelled): wraps ErrTransport
//   - Non-2xx status: *StatusError; 404 also matches ErrNotFound
//   - Undecodable body: wraps ErrDecode
//
// KindOf classifies any returned error into one of these kinds.
//
// # Request Handling
//
// Every request carries Accept: application/json, a furrow User-Agent and a
// fresh X-Request-ID. POST bodies are JSON with Content-Type set. No timeout
// is configured unless WithTimeout is given; cancellation comes from ctx.
//
// # Thread Safety
//
// Client and HTTPTransport hold no mutable state and are safe for concurrent
// use.
package irrigation
