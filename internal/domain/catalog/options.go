package catalog

import (
	"time"
)

// Option applies a configuration option to the catalog.
type Option func(*catalog)

// WithStallDuration overrides how long the no-response scenario suspends.
// Tests use a short duration to keep runtime bounded; production keeps the
// ten-minute default.
func WithStallDuration(d time.Duration) Option {
	return func(c *catalog) {
		if d > 0 {
			c.stall = d
		}
	}
}
