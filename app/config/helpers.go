package config

import (
	"time"
)

func (c *MonitorConfig) GetInterval() time.Duration {
	if c.Interval == nil {
		return DefaultInterval * time.Second
	}
	return time.Duration(*c.Interval) * time.Second
}

func (c *MonitorConfig) GetRetries() int {
	if c.Retries == nil {
		return DefaultRetries
	}
	return *c.Retries
}

// GetRetryInterval returns the configured delay between retries, or the
// interval split evenly over the retries when none is configured.
func (c *MonitorConfig) GetRetryInterval() time.Duration {
	if c.RetryInterval > 0 {
		return time.Duration(c.RetryInterval) * time.Second
	}
	return c.GetInterval() / time.Duration(max(c.GetRetries(), 1))
}
