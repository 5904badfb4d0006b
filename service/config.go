package service

import (
	"fmt"

	"github.com/kbukum/tubescript/util"
)

// Config tunes the pipeline façade.
type Config struct {
	// MaxConcurrentJobs bounds how many jobs run their pipeline at once.
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs"`
	// BatchConcurrency is the number of items a batch runs at once.
	BatchConcurrency int `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`
	// PreviewLimit is the default and maximum preview size.
	PreviewLimit int `yaml:"preview_limit" mapstructure:"preview_limit"`
	// PageLimit is the default listing page size; MaxPageLimit caps it.
	PageLimit    int `yaml:"page_limit" mapstructure:"page_limit"`
	MaxPageLimit int `yaml:"max_page_limit" mapstructure:"max_page_limit"`
	// Diarization defaults for submissions that leave them out.
	DiarizationEnabled     *bool   `yaml:"diarization_enabled" mapstructure:"diarization_enabled"`
	DiarizationSensitivity float64 `yaml:"diarization_sensitivity" mapstructure:"diarization_sensitivity"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrentJobs <= 0 {
		c.MaxConcurrentJobs = 2
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 1
	}
	if c.PreviewLimit <= 0 {
		c.PreviewLimit = 10
	}
	if c.PageLimit <= 0 {
		c.PageLimit = 50
	}
	if c.MaxPageLimit <= 0 {
		c.MaxPageLimit = 500
	}
	if c.DiarizationEnabled == nil {
		c.DiarizationEnabled = util.Ptr(true)
	}
	if c.DiarizationSensitivity == 0 {
		c.DiarizationSensitivity = 0.5
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PageLimit > c.MaxPageLimit {
		return fmt.Errorf("pipeline.page_limit (%d) exceeds pipeline.max_page_limit (%d)", c.PageLimit, c.MaxPageLimit)
	}
	if c.DiarizationSensitivity < 0 || c.DiarizationSensitivity > 1 {
		return fmt.Errorf("pipeline.diarization_sensitivity must be in [0,1] (got: %v)", c.DiarizationSensitivity)
	}
	return nil
}
