// Package app wires the application together: configuration in, a ready
// server out. It owns construction order so the rest of the codebase can
// take collaborators as plain arguments.
package app

import (
	"github.com/skiff-ai/skiff/api"
	"github.com/skiff-ai/skiff/internal/agent"
	"github.com/skiff-ai/skiff/internal/config"
	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/log"
	"github.com/skiff-ai/skiff/internal/security"
	"github.com/skiff-ai/skiff/internal/session"
	"github.com/skiff-ai/skiff/internal/tools"
)

// App is the assembled application.
type App struct {
	Config *config.Config
	Logger log.Logger

	Client     *llm.Client
	Store      *session.Store
	Standard   *tools.Registry
	Privileged *tools.Registry
	Agent      *agent.Agent
	Server     *api.Server
}

// Setup builds the full object graph from configuration.
func Setup(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	client := llm.NewClient(llm.Config{
		Host:    cfg.ModelHost,
		Model:   cfg.ModelName,
		Timeout: cfg.ModelTimeout,
	}, logger)

	store := session.NewStore(logger)
	if err := store.SetDefaults(session.Settings{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}); err != nil {
		return nil, err
	}

	gate := security.NewGate(logger)

	standard, err := tools.NewStandardRegistry(tools.Config{
		Search: tools.SearchConfig{Endpoint: cfg.SearchEndpoint, Timeout: cfg.ToolTimeout},
		Wiki:   tools.WikiConfig{Endpoint: cfg.WikiEndpoint, Timeout: cfg.ToolTimeout},
		Weather: tools.WeatherConfig{
			GeocodeEndpoint:  cfg.GeocodeEndpoint,
			ForecastEndpoint: cfg.ForecastEndpoint,
			Timeout:          cfg.ToolTimeout,
		},
		Fetch: tools.FetchConfig{Timeout: cfg.ToolTimeout},
	}, logger)
	if err != nil {
		return nil, err
	}
	privileged, err := tools.NewPrivilegedRegistry(gate, logger)
	if err != nil {
		return nil, err
	}

	ag := agent.New(client, standard, privileged, store, agent.Config{
		Model:               cfg.ModelName,
		MaxRounds:           cfg.MaxRounds,
		ModelCallsPerSecond: cfg.ModelCallsPerSecond,
	}, logger)

	server := api.NewServer(ag, store, standard, privileged, cfg.ModelName, logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Store:      store,
		Standard:   standard,
		Privileged: privileged,
		Agent:      ag,
		Server:     server,
	}, nil
}
