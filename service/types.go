package service

import (
	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/batch"
	"github.com/kbukum/tubescript/transcript"
)

// SubmitJobRequest starts a single-video job.
type SubmitJobRequest struct {
	URL                    string   `json:"url" validate:"required,url"`
	DiarizationEnabled     *bool    `json:"diarization_enabled"`
	DiarizationSensitivity *float64 `json:"diarization_sensitivity" validate:"omitempty,gte=0,lte=1"`
}

// SubmitBatchRequest starts a playlist or channel batch.
type SubmitBatchRequest struct {
	URL                    string   `json:"url" validate:"required,url"`
	Limit                  int      `json:"limit" validate:"gte=0"`
	SelectedIDs            []string `json:"selected_ids" validate:"omitempty,dive,notblank"`
	DiarizationEnabled     *bool    `json:"diarization_enabled"`
	DiarizationSensitivity *float64 `json:"diarization_sensitivity" validate:"omitempty,gte=0,lte=1"`
}

// RenameRequest maps current speaker labels to new ones.
type RenameRequest struct {
	Mapping map[string]string `json:"speaker_mapping" validate:"required,min=1,dive,keys,notblank,endkeys,notblank"`
}

// RenameResult reports a rename.
type RenameResult struct {
	RenamedSegments int               `json:"renamed_segments"`
	Mapping         map[string]string `json:"mapping"`
	SpeakerCount    int               `json:"num_speakers"`
}

// MergeRequest collapses several speaker labels into one.
type MergeRequest struct {
	Labels   []string `json:"labels" validate:"min=2,dive,notblank"`
	NewLabel string   `json:"new_label" validate:"notblank"`
}

// Preview is a bounded prefix of a collection.
type Preview struct {
	Kind    acquisition.Kind   `json:"type"`
	Title   string             `json:"title"`
	Items   []acquisition.Item `json:"items"`
	HasMore bool               `json:"has_more"`
}

// Page is one offset/limit window of a collection.
type Page struct {
	Kind     acquisition.Kind   `json:"type"`
	Title    string             `json:"title"`
	Uploader string             `json:"uploader"`
	Total    int                `json:"total_items"`
	Items    []acquisition.Item `json:"items"`
	Offset   int                `json:"offset"`
	Limit    int                `json:"limit"`
	HasMore  bool               `json:"has_more"`
}

// ItemResult is the transcript of one succeeded batch item.
type ItemResult struct {
	JobID      string                 `json:"job_id"`
	Title      string                 `json:"title"`
	SourceURL  string                 `json:"source_url"`
	Transcript *transcript.Transcript `json:"transcript"`
}

// BatchResults collects the succeeded items of a finished batch.
type BatchResults struct {
	BatchID string       `json:"batch_id"`
	Status  batch.Status `json:"status"`
	Results []ItemResult `json:"results"`
}
