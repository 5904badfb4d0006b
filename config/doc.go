// Package config loads service configuration with Viper.
//
// Values come from a YAML file (cmd/<service>/config.yml by default), an
// optional .env file loaded with godotenv, and TUBESCRIPT_ prefixed
// environment variables, in increasing order of precedence.
//
// # Usage
//
//	var cfg app.Config
//	if err := config.LoadConfig("tubescript", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
package config
