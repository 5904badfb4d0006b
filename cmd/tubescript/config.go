package main

import (
	"fmt"
	"time"

	"github.com/kbukum/tubescript/acquisition"
	"github.com/kbukum/tubescript/config"
	"github.com/kbukum/tubescript/diarization/pyannote"
	"github.com/kbukum/tubescript/observability"
	"github.com/kbukum/tubescript/redis"
	"github.com/kbukum/tubescript/server"
	"github.com/kbukum/tubescript/service"
	"github.com/kbukum/tubescript/transcription/whisper"
)

// Config is the tubescript process configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Pipeline      service.Config       `yaml:"pipeline" mapstructure:"pipeline"`
	Acquisition   acquisition.Config   `yaml:"acquisition" mapstructure:"acquisition"`
	Diarization   DiarizationConfig    `yaml:"diarization" mapstructure:"diarization"`
	Transcription TranscriptionConfig  `yaml:"transcription" mapstructure:"transcription"`
	Events        EventsConfig         `yaml:"events" mapstructure:"events"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// DiarizationConfig selects and configures diarization backends.
type DiarizationConfig struct {
	// Strategy is "priority", "round_robin" or "health_check".
	Strategy    string          `yaml:"strategy" mapstructure:"strategy"`
	MinSpeakers int             `yaml:"min_speakers" mapstructure:"min_speakers"`
	MaxSpeakers int             `yaml:"max_speakers" mapstructure:"max_speakers"`
	Pyannote    pyannote.Config `yaml:"pyannote" mapstructure:"pyannote"`
}

// TranscriptionConfig selects and configures transcription backends.
type TranscriptionConfig struct {
	Strategy    string         `yaml:"strategy" mapstructure:"strategy"`
	Concurrency int            `yaml:"concurrency" mapstructure:"concurrency"`
	Whisper     whisper.Config `yaml:"whisper" mapstructure:"whisper"`
}

// EventsConfig configures the progress stream.
type EventsConfig struct {
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive"`
}

// ApplyDefaults fills zero values in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Acquisition.ApplyDefaults()
	c.Observability.ApplyDefaults()

	if c.Diarization.Strategy == "" {
		c.Diarization.Strategy = "priority"
	}
	if c.Transcription.Strategy == "" {
		c.Transcription.Strategy = "priority"
	}
	if c.Transcription.Concurrency == 0 {
		c.Transcription.Concurrency = 1
	}
	if c.Events.KeepAlive == 0 {
		c.Events.KeepAlive = 30 * time.Second
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"redis", c.Redis.Validate},
		{"pipeline", c.Pipeline.Validate},
		{"acquisition", c.Acquisition.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	if c.Diarization.MinSpeakers < 0 || c.Diarization.MaxSpeakers < 0 {
		return fmt.Errorf("diarization: speaker bounds must be non-negative")
	}
	if c.Diarization.MaxSpeakers > 0 && c.Diarization.MinSpeakers > c.Diarization.MaxSpeakers {
		return fmt.Errorf("diarization: min_speakers (%d) exceeds max_speakers (%d)",
			c.Diarization.MinSpeakers, c.Diarization.MaxSpeakers)
	}
	if c.Transcription.Concurrency < 1 {
		return fmt.Errorf("transcription: concurrency must be at least 1 (got: %d)", c.Transcription.Concurrency)
	}
	return nil
}
