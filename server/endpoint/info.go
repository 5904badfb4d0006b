package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// BuildInfo identifies the running binary. Version and Commit are set at
// link time by cmd/tubescript.
type BuildInfo struct {
	Service     string
	Version     string
	Commit      string
	Environment string
}

// Info returns a handler that reports service version and build information.
func Info(info BuildInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     info.Service,
			"version":     info.Version,
			"git_commit":  info.Commit,
			"environment": info.Environment,
			"go_version":  runtime.Version(),
			"uptime":      time.Since(startTime).String(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
