package transcription

import (
	"context"

	"github.com/kbukum/tubescript/provider"
)

// Provider is the interface speech-to-text backends implement.
type Provider interface {
	provider.Provider

	// Transcribe converts the requested window of an audio file to text.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// NewManager creates a provider manager for transcription backends.
func NewManager(selector provider.Selector[Provider]) *provider.Manager[Provider] {
	return provider.NewManager(provider.NewRegistry[Provider](), selector)
}
