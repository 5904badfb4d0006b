// Package component manages the lifecycle of long-lived infrastructure
// (HTTP server, event hub, Redis) through a Registry that starts components
// in order, stops them in reverse and aggregates their health.
package component
