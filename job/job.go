package job

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/tubescript/transcript"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Messages written by the controller.
const (
	MessageQueued       = "Job queued for processing"
	MessageDownloading  = "Downloading YouTube audio"
	MessageDiarizing    = "Performing speaker diarization"
	MessageTranscribing = "Transcribing audio segments"
	MessageAssembling   = "Assembling final transcript"
	MessageComplete     = "Processing complete"
)

// DefaultSensitivity is used when a submission does not set one.
const DefaultSensitivity = 0.5

// Result is the output of a completed job. OriginalSpeakers maps every
// label produced by diarization to itself and is never edited, so the
// pre-edit label set stays available after renames and merges.
type Result struct {
	Transcript       *transcript.Transcript `json:"transcript"`
	OriginalSpeakers map[string]string      `json:"original_speakers"`
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Transcript:       r.Transcript.Clone(),
		OriginalSpeakers: maps.Clone(r.OriginalSpeakers),
	}
}

// Job is the snapshot of one transcription request.
type Job struct {
	ID                     string    `json:"id"`
	Status                 Status    `json:"status"`
	Progress               float64   `json:"progress"`
	Message                string    `json:"message"`
	Result                 *Result   `json:"result,omitempty"`
	DiarizationEnabled     bool      `json:"diarization_enabled"`
	DiarizationSensitivity float64   `json:"diarization_sensitivity"`
	SourceURL              string    `json:"source_url"`
	Title                  string    `json:"title,omitempty"`
	BatchID                string    `json:"batch_id,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Options are the caller-supplied settings of a new job.
type Options struct {
	DiarizationEnabled     bool
	DiarizationSensitivity float64
	BatchID                string
}

// New creates a queued job for sourceURL.
func New(sourceURL string, opts Options) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:                     uuid.NewString(),
		Status:                 StatusQueued,
		Message:                MessageQueued,
		DiarizationEnabled:     opts.DiarizationEnabled,
		DiarizationSensitivity: opts.DiarizationSensitivity,
		SourceURL:              sourceURL,
		BatchID:                opts.BatchID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// RecordID implements store.Record.
func (j *Job) RecordID() string { return j.ID }

// Clone implements store.Record.
func (j *Job) Clone() *Job {
	c := *j
	c.Result = j.Result.Clone()
	return &c
}

// Summary is the polling view of a job.
type Summary struct {
	ID       string  `json:"id"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

// Summary returns the polling view.
func (j *Job) Summary() Summary {
	return Summary{ID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message}
}
