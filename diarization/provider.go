package diarization

import (
	"context"

	"github.com/kbukum/tubescript/provider"
)

// Provider is the interface diarization backends implement.
type Provider interface {
	provider.Provider

	// Diarize partitions the audio into speaker-attributed spans.
	Diarize(ctx context.Context, req Request) (*Response, error)
}

// NewManager creates a provider manager for diarization backends.
func NewManager(selector provider.Selector[Provider]) *provider.Manager[Provider] {
	return provider.NewManager(provider.NewRegistry[Provider](), selector)
}
