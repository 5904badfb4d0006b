package batch

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/tubescript/acquisition"
)

// Status is the lifecycle state of a batch.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusExtracting Status = "extracting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// HasResults reports whether completed jobs can be collected.
func (s Status) HasResults() bool {
	return s == StatusCompleted || s == StatusPartial
}

// Messages written by the controller.
const (
	MessageQueued     = "Batch queued for processing"
	MessageExtracting = "Extracting items from source"
	MessageNoItems    = "No items found"
)

// Item is a listed entry together with the job spawned for it.
type Item struct {
	acquisition.Item
	JobID string `json:"job_id,omitempty"`
}

// Batch is the snapshot of one playlist or channel request.
type Batch struct {
	ID                     string           `json:"id"`
	Status                 Status           `json:"status"`
	Progress               float64          `json:"progress"`
	Message                string           `json:"message"`
	SourceURL              string           `json:"source_url"`
	SourceKind             acquisition.Kind `json:"source_kind"`
	Title                  string           `json:"title,omitempty"`
	Uploader               string           `json:"uploader,omitempty"`
	Items                  []Item           `json:"items"`
	CompletedJobIDs        []string         `json:"completed_job_ids"`
	FailedJobIDs           []string         `json:"failed_job_ids"`
	TotalItems             int              `json:"total_items"`
	Limit                  int              `json:"limit,omitempty"`
	SelectedIDs            []string         `json:"selected_ids,omitempty"`
	DiarizationEnabled     bool             `json:"diarization_enabled"`
	DiarizationSensitivity float64          `json:"diarization_sensitivity"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// Options are the caller-supplied settings of a new batch.
type Options struct {
	Limit                  int
	SelectedIDs            []string
	DiarizationEnabled     bool
	DiarizationSensitivity float64
}

// New creates a queued batch for sourceURL.
func New(sourceURL string, kind acquisition.Kind, opts Options) *Batch {
	now := time.Now().UTC()
	return &Batch{
		ID:                     uuid.NewString(),
		Status:                 StatusQueued,
		Message:                MessageQueued,
		SourceURL:              sourceURL,
		SourceKind:             kind,
		Items:                  []Item{},
		CompletedJobIDs:        []string{},
		FailedJobIDs:           []string{},
		Limit:                  opts.Limit,
		SelectedIDs:            slices.Clone(opts.SelectedIDs),
		DiarizationEnabled:     opts.DiarizationEnabled,
		DiarizationSensitivity: opts.DiarizationSensitivity,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// RecordID implements store.Record.
func (b *Batch) RecordID() string { return b.ID }

// Clone implements store.Record.
func (b *Batch) Clone() *Batch {
	c := *b
	c.Items = slices.Clone(b.Items)
	c.CompletedJobIDs = slices.Clone(b.CompletedJobIDs)
	c.FailedJobIDs = slices.Clone(b.FailedJobIDs)
	c.SelectedIDs = slices.Clone(b.SelectedIDs)
	return &c
}

// Done returns the number of finished items.
func (b *Batch) Done() int {
	return len(b.CompletedJobIDs) + len(b.FailedJobIDs)
}

// Summary is the polling view of a batch.
type Summary struct {
	ID              string   `json:"id"`
	Status          Status   `json:"status"`
	Progress        float64  `json:"progress"`
	Message         string   `json:"message"`
	TotalItems      int      `json:"total_items"`
	CompletedJobIDs []string `json:"completed_job_ids"`
	FailedJobIDs    []string `json:"failed_job_ids"`
}

// Summary returns the polling view.
func (b *Batch) Summary() Summary {
	return Summary{
		ID:              b.ID,
		Status:          b.Status,
		Progress:        b.Progress,
		Message:         b.Message,
		TotalItems:      b.TotalItems,
		CompletedJobIDs: slices.Clone(b.CompletedJobIDs),
		FailedJobIDs:    slices.Clone(b.FailedJobIDs),
	}
}
