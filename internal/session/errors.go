package session

import "errors"

// Sampling-settings bounds and defaults. The defaults match what a fresh
// session starts with; Reset never touches settings once a session exists.
const (
	// DefaultTemperature is the sampling temperature for new sessions.
	DefaultTemperature = 0.2

	// DefaultMaxTokens is the context-window budget for new sessions.
	DefaultMaxTokens = 8000

	// MinTemperature / MaxTemperature bound the accepted temperature range.
	MinTemperature = 0.0
	MaxTemperature = 2.0

	// MinMaxTokens / MaxMaxTokens bound the accepted token budget.
	MinMaxTokens = 1
	MaxMaxTokens = 131072
)

// Sentinel errors for session operations. Check with errors.Is().
var (
	// ErrInvalidTemperature indicates a temperature outside
	// [MinTemperature, MaxTemperature].
	ErrInvalidTemperature = errors.New("temperature out of range")

	// ErrInvalidMaxTokens indicates a token budget outside
	// [MinMaxTokens, MaxMaxTokens].
	ErrInvalidMaxTokens = errors.New("max_tokens out of range")

	// ErrEmptySessionID indicates an operation was attempted without a
	// session identifier.
	ErrEmptySessionID = errors.New("session id cannot be empty")
)

// ValidateSettings checks a settings value against the accepted bounds.
func ValidateSettings(s Settings) error {
	if s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
		return ErrInvalidTemperature
	}
	if s.MaxTokens < MinMaxTokens || s.MaxTokens > MaxMaxTokens {
		return ErrInvalidMaxTokens
	}
	return nil
}
