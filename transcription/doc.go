// Package transcription defines the speech-to-text provider contract and its
// request and response types.
//
// Backends live in sub-packages (see transcription/whisper) and are selected
// at runtime through a provider.Manager created by NewManager.
package transcription
