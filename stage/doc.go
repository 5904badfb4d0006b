// Package stage adapts the external collaborators of the transcription
// pipeline (audio acquisition, diarization and speech-to-text) to the narrow
// interfaces the job and batch controllers consume.
//
// Adapters translate backend failures into AcquisitionError or StageError
// and never retry; retry policy belongs to callers.
package stage
