// Package resilience limits load on the pipeline.
//
// Bulkhead caps how many jobs run at once; queued jobs wait in Acquire.
// RateLimiter and KeyedRateLimiter are token buckets used to throttle job
// and batch submissions per client.
package resilience
