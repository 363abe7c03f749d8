package tools

import (
	"fmt"

	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/security"
)

// Config bundles the provider settings for the standard tool set. Zero
// values mean "use the public defaults"; tests override the endpoints.
type Config struct {
	Search  SearchConfig
	Wiki    WikiConfig
	Weather WeatherConfig
	Fetch   FetchConfig
}

// NewStandardRegistry composes the registry active in normal chat mode:
// web search, encyclopedia, weather, calculator, and page fetch. Nothing in
// this set touches the host beyond outbound HTTP.
func NewStandardRegistry(cfg Config, logger log.Logger) (*Registry, error) {
	r := NewRegistry(logger)

	builders := []func() (*Tool, error){
		func() (*Tool, error) { return NewSearchTool(cfg.Search, logger) },
		func() (*Tool, error) { return NewWikiTool(cfg.Wiki, logger) },
		func() (*Tool, error) { return NewWeatherTool(cfg.Weather, logger) },
		func() (*Tool, error) { return NewCalculatorTool(logger) },
		func() (*Tool, error) { return NewFetchPageTool(cfg.Fetch, logger) },
	}
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, fmt.Errorf("building standard registry: %w", err)
		}
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewPrivilegedRegistry composes the computer-use registry: code and
// command execution, file access, and host inspection. It REPLACES the
// standard registry when the privileged mode is active — the two sets are
// never merged, so the reachable surface of each mode stays auditable.
//
// Every executable payload passes through the gate before running.
func NewPrivilegedRegistry(gate *security.Gate, logger log.Logger) (*Registry, error) {
	r := NewRegistry(logger)

	builders := []func() (*Tool, error){
		func() (*Tool, error) { return NewExecutePythonTool(gate, logger) },
		func() (*Tool, error) { return NewExecuteCommandTool(gate, logger) },
		func() (*Tool, error) { return NewListFilesTool(logger) },
		func() (*Tool, error) { return NewReadFileTool(logger) },
		func() (*Tool, error) { return NewSystemInfoTool(logger) },
	}
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, fmt.Errorf("building privileged registry: %w", err)
		}
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
