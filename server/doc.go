// Package server provides the HTTP server: a Gin engine mounted on a plain
// ServeMux behind h2c, so Gin routes and raw http.Handlers such as the event
// stream share one port and one middleware chain.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation into the logger
//   - CORS: cross-origin resource sharing
//   - RequestLogger: request logging that skips health checks and successful polling
//   - BodySizeLimit: request body size limits
//   - RateLimit: per-client token buckets on submission routes
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /info and /metrics.
package server
