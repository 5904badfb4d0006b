// Package provider implements generic, swappable backends.
//
// A Registry holds named factories, a Manager holds the initialized
// instances and a Selector picks one per call. Diarization and
// transcription backends are selected this way.
//
//	m := provider.NewManager(provider.NewRegistry[diarization.Provider](), nil)
//	m.Register(pyannote.ProviderName, pyannote.Factory())
//	_ = m.Initialize(pyannote.ProviderName, map[string]any{"base_url": url})
//	p, err := m.Get(ctx)
package provider
