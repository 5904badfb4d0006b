// Package errors provides the application error type used across tubescript.
// Errors carry a machine-readable code, an HTTP status mapping and a
// retryable hint, and serialize to an RFC 7807 style body.
package errors
