// Package diarization defines the speaker diarization backend contract.
//
// Backends:
//
//   - diarization/pyannote: pyannote.audio HTTP sidecar
package diarization
