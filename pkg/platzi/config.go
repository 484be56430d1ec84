package platzi

import (
	"fmt"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://api.escuelajs.co/api/v1"

// Config represents the configuration for the catalog client
type Config struct {
	// BaseURL is the catalog API root, without a trailing slash
	BaseURL string

	// Timeout bounds each request
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base URL %q is not absolute", ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}
