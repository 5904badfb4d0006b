package bootstrap

import (
	"github.com/kbukum/tubescript/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.ServiceConfig satisfies it once it adds ApplyDefaults
// and Validate for its own sections.
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
