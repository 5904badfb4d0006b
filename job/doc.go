// Package job holds the job record and the controller that drives one job
// through acquisition, diarization, transcription and assembly.
//
// A controller writes a full snapshot to its repository and publishes a
// summary on every state change:
//
//	queued -> processing -> completed | failed
//
// Progress moves 0.1 (download), 0.3 (diarization), 0.6 to 0.8 (one step
// per transcribed segment) and 1.0 on completion. A failed job has progress
// 0 and a message of the form "Error: <cause>".
package job
