// Package logger provides structured logging on top of zerolog.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("job")
//	log.Info("stage finished", logger.StageFields(id, "diarize", d))
package logger
