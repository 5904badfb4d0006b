// Package service is the entry point for everything the HTTP API offers:
// submitting jobs and batches, polling them, editing speaker identities and
// exporting transcripts.
//
// Jobs and batches run in background goroutines owned by the Service.
// Identity edits and transcript reads of the same job are serialized by a
// per-job RWMutex. Shutdown cancels every run; cancelled jobs still end in
// the failed state.
package service
