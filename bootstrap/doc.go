// Package bootstrap runs a service through start, configure, ready, wait and
// stop phases on top of a component.Registry.
package bootstrap
