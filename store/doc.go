// Package store defines the Repository capability used to keep job and
// batch snapshots, with an in-memory implementation. A Redis-backed
// implementation lives in package redis.
package store
