package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/review-gateway/internal/app"
	"github.com/sevigo/review-gateway/internal/config"
	"github.com/sevigo/review-gateway/internal/core"
	"github.com/sevigo/review-gateway/internal/llm"
	"github.com/sevigo/review-gateway/internal/logger"
	"github.com/sevigo/review-gateway/internal/review"
	"github.com/sevigo/review-gateway/internal/server"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
	providePromptManager,
	provideProvider,
	provideReviewClient,
	wire.Bind(new(review.Composer), new(*llm.PromptManager)),
	wire.Bind(new(core.Reviewer), new(*review.Client)),
)

func provideGeneratorLLM(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.AI.LLMProvider {
	case config.ProviderGemini:
		if cfg.AI.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return gemini.New(ctx, gemini.WithModel(cfg.AI.GeneratorModel), gemini.WithAPIKey(cfg.AI.GeminiAPIKey))
	case config.ProviderOllama:
		return ollama.New(
			ollama.WithServerURL(cfg.AI.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.AI.GeneratorModel),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.AI.LLMProvider)
	}
}

// provideProvider picks the core.Provider named by LLM_PROVIDER.
func provideProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Provider, error) {
	if cfg.AI.LLMProvider == config.ProviderFixture {
		logger.Info("using fixture provider", "fixture_path", cfg.AI.FixturePath)
		return llm.NewFixtureProvider(cfg.AI.FixturePath)
	}

	logger.Info("connecting to generator LLM", "provider", cfg.AI.LLMProvider, "model", cfg.AI.GeneratorModel)
	model, err := provideGeneratorLLM(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator LLM: %w", err)
	}
	return llm.NewModelAdapter(cfg.AI.LLMProvider, model), nil
}

func providePromptManager() (*llm.PromptManager, error) {
	return llm.NewPromptManager()
}

func provideReviewClient(cfg *config.Config, provider core.Provider, composer review.Composer, logger *slog.Logger) *review.Client {
	policy := review.DefaultPolicy()
	policy.MaxAttempts = cfg.Review.MaxAttempts
	policy.BaseDelay = cfg.Review.BaseDelay
	return review.New(provider, composer,
		review.WithPolicy(policy),
		review.WithLogger(logger),
	)
}

func newOllamaHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: 5 * time.Minute,
	}
}

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	return logger.Writer(cfg.Logging.Output)
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(loggerConfig, writer)
	slog.SetDefault(l)
	return l
}
