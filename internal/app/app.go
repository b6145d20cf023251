// Package app initializes and orchestrates the main components of the review gateway.
// It wires together the configuration and the HTTP server.
package app

import (
	"log/slog"

	"github.com/sevigo/review-gateway/internal/config"
	"github.com/sevigo/review-gateway/internal/server"
)

// App holds the main application components.
type App struct {
	Cfg    *config.Config
	Logger *slog.Logger
	server *server.Server
}

// NewApp bundles already constructed components. Construction order lives
// in the wire package.
func NewApp(cfg *config.Config, srv *server.Server, logger *slog.Logger) *App {
	return &App{
		Cfg:    cfg,
		Logger: logger,
		server: srv,
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.Logger.Info("starting review gateway",
		"server_port", a.Cfg.Server.Port,
		"llm_provider", a.Cfg.AI.LLMProvider,
		"generator_model", a.Cfg.AI.GeneratorModel,
		"max_attempts", a.Cfg.Review.MaxAttempts,
		"base_delay", a.Cfg.Review.BaseDelay,
		"retry_budget", a.Cfg.Review.RetryBudget(),
		"request_timeout", a.Cfg.Server.RequestTimeout)

	err := a.server.Start()
	if err != nil {
		a.Logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.Logger.Info("shutting down review gateway")

	if err := a.server.Stop(); err != nil {
		a.Logger.Error("review gateway stopped with errors", "error", err)
		return err
	}

	a.Logger.Info("review gateway stopped successfully")
	return nil
}
