// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/review-gateway/internal/app"
	"github.com/sevigo/review-gateway/internal/config"
	"github.com/sevigo/review-gateway/internal/server"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := provideLoggerConfig(cfg)
	logWriter := provideLogWriter(cfg)
	slogLogger := provideSlogLogger(loggerConfig, logWriter)

	// Provider
	provider, err := provideProvider(ctx, cfg, slogLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Prompt Manager
	promptMgr, err := providePromptManager()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}

	// Review Client
	reviewClient := provideReviewClient(cfg, provider, promptMgr, slogLogger)

	// Server
	srv := server.NewServer(cfg, reviewClient, slogLogger)

	// App
	application := app.NewApp(cfg, srv, slogLogger)

	cleanup := func() {}

	return application, cleanup, nil
}
