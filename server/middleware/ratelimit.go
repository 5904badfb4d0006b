package middleware

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/resilience"
)

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestsPerSecond is the refill rate of each client's bucket.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	// Burst is the bucket capacity.
	Burst int `yaml:"burst" mapstructure:"burst"`
	// Methods lists the limited HTTP methods; submissions by default.
	Methods []string `yaml:"methods" mapstructure:"methods"`
	// IdleTTL drops buckets of clients idle for this long.
	IdleTTL time.Duration `yaml:"idle_ttl" mapstructure:"idle_ttl"`
	// KeyFunc extracts the client key. Defaults to client IP.
	KeyFunc func(*gin.Context) string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills zero values.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 1
	}
	if c.Burst == 0 {
		c.Burst = 5
	}
	if len(c.Methods) == 0 {
		c.Methods = []string{"POST"}
	}
	if c.IdleTTL == 0 {
		c.IdleTTL = 10 * time.Minute
	}
}

// Validate checks the configuration.
func (c *RateLimitConfig) Validate() error {
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be non-negative (got: %v)", c.RequestsPerSecond)
	}
	if c.Burst < 0 {
		return fmt.Errorf("burst must be non-negative (got: %d)", c.Burst)
	}
	return nil
}

// RateLimit returns a Gin middleware that applies a token bucket per client.
// Rejected requests get 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	cfg.ApplyDefaults()
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	limiter := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
		Name:  "http",
		Rate:  cfg.RequestsPerSecond,
		Burst: cfg.Burst,
	}, cfg.IdleTTL)

	return func(c *gin.Context) {
		if !slices.Contains(cfg.Methods, c.Request.Method) {
			c.Next()
			return
		}
		ok, wait := limiter.Allow(cfg.KeyFunc(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			appErr := errors.RateLimited(wait)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}
