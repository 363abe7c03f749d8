package config

import (
	"fmt"
	"net/url"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if err := validateBaseURL(c.ModelHost); err != nil {
		return fmt.Errorf("%w: model_host %q: %v", ErrInvalidModelHost, c.ModelHost, err)
	}

	// Temperature range matches what the session store will accept later.
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens < 1 || c.MaxTokens > 131072 {
		return fmt.Errorf("%w: must be between 1 and 131,072, got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}

	if c.MaxRounds < 1 || c.MaxRounds > 25 {
		return fmt.Errorf("%w: must be between 1 and 25, got %d", ErrInvalidMaxRounds, c.MaxRounds)
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr cannot be empty", ErrInvalidListenAddr)
	}

	if c.ModelTimeout <= 0 {
		return fmt.Errorf("%w: model_timeout must be positive, got %s", ErrInvalidTimeout, c.ModelTimeout)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("%w: tool_timeout must be positive, got %s", ErrInvalidTimeout, c.ToolTimeout)
	}

	return nil
}

// validateBaseURL checks that s parses as an absolute http(s) URL.
func validateBaseURL(s string) error {
	if s == "" {
		return fmt.Errorf("empty URL")
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
