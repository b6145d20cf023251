package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/review-gateway/internal/logger"
	"github.com/sevigo/review-gateway/internal/review"
)

const (
	ProviderGemini  = "gemini"
	ProviderOllama  = "ollama"
	ProviderFixture = "fixture"

	maxReviewAttempts = 10

	// providerCallAllowance is the time reserved for each provider call on
	// top of the backoff waits when sizing the server timeouts.
	providerCallAllowance = 20 * time.Second
	writeTimeoutSlack     = 10 * time.Second
)

// Config holds the application's configuration values.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Review  ReviewConfig
	Logging logger.Config
}

// ServerConfig controls the HTTP gateway.
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	WriteTimeout   time.Duration
	MaxBodyBytes   int64
}

// AIConfig selects and configures the text-generation provider.
type AIConfig struct {
	LLMProvider    string
	GeminiAPIKey   string
	GeneratorModel string
	OllamaHost     string
	FixturePath    string
}

// ReviewConfig holds the retry policy of the review client.
type ReviewConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Validate checks the provider selection and its required settings.
func (c AIConfig) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY must be set for the gemini provider")
		}
	case ProviderOllama:
		if c.OllamaHost == "" {
			return errors.New("OLLAMA_HOST must be set for the ollama provider")
		}
	case ProviderFixture:
	default:
		return fmt.Errorf("unsupported LLM provider: %q", c.LLMProvider)
	}
	if c.LLMProvider != ProviderFixture && c.GeneratorModel == "" {
		return errors.New("GENERATOR_MODEL_NAME must be set")
	}
	return nil
}

// Validate checks the retry budget.
func (c ReviewConfig) Validate() error {
	if c.MaxAttempts < 1 || c.MaxAttempts > maxReviewAttempts {
		return fmt.Errorf("REVIEW_MAX_ATTEMPTS must be between 1 and %d, got %d", maxReviewAttempts, c.MaxAttempts)
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("REVIEW_BASE_DELAY must not be negative, got %s", c.BaseDelay)
	}
	return nil
}

// RetryBudget is the longest a single review can take: every backoff wait
// plus one provider call allowance per attempt.
func (c ReviewConfig) RetryBudget() time.Duration {
	policy := review.RetryPolicy{MaxAttempts: c.MaxAttempts, BaseDelay: c.BaseDelay}
	return policy.BackoffBudget() + time.Duration(c.MaxAttempts)*providerCallAllowance
}

// fitTimeouts raises the request and write timeouts so that neither can end
// a review before its retry budget is spent. A zero request timeout stays
// disabled.
func (c *Config) fitTimeouts() {
	budget := c.Review.RetryBudget()
	if c.Server.RequestTimeout > 0 && c.Server.RequestTimeout < budget {
		slog.Warn("raising SERVER_REQUEST_TIMEOUT to cover the retry budget",
			"configured", c.Server.RequestTimeout, "budget", budget)
		c.Server.RequestTimeout = budget
	}
	minWrite := max(budget, c.Server.RequestTimeout) + writeTimeoutSlack
	if c.Server.WriteTimeout < minWrite {
		slog.Warn("raising SERVER_WRITE_TIMEOUT to cover the retry budget",
			"configured", c.Server.WriteTimeout, "budget", budget)
		c.Server.WriteTimeout = minWrite
	}
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	return Load(viper.New(), ".env")
}

// Load reads configuration through v. envFile may be empty to skip the
// dotenv file.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "90s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "120s")
	v.SetDefault("SERVER_MAX_BODY_BYTES", 1<<20)
	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("REVIEW_MAX_ATTEMPTS", 3)
	v.SetDefault("REVIEW_BASE_DELAY", "2s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				slog.Error("failed to read config file", "error", err)
			}
		}
	}

	// Special handling for the generator model name, as in the provider defaults.
	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))
	generatorModel := v.GetString("GENERATOR_MODEL_NAME")
	if generatorModel == "" {
		switch provider {
		case ProviderGemini:
			generatorModel = "gemini-1.5-flash"
		case ProviderOllama:
			generatorModel = "gemma3:latest"
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
			WriteTimeout:   v.GetDuration("SERVER_WRITE_TIMEOUT"),
			MaxBodyBytes:   v.GetInt64("SERVER_MAX_BODY_BYTES"),
		},
		AI: AIConfig{
			LLMProvider:    provider,
			GeminiAPIKey:   v.GetString("GEMINI_API_KEY"),
			GeneratorModel: generatorModel,
			OllamaHost:     v.GetString("OLLAMA_HOST"),
			FixturePath:    v.GetString("FIXTURE_PATH"),
		},
		Review: ReviewConfig{
			MaxAttempts: v.GetInt("REVIEW_MAX_ATTEMPTS"),
			BaseDelay:   v.GetDuration("REVIEW_BASE_DELAY"),
		},
		Logging: logger.Config{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
			Output: strings.ToLower(v.GetString("LOG_OUTPUT")),
		},
	}

	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Review.Validate(); err != nil {
		return nil, err
	}
	if cfg.Server.Port == "" {
		return nil, errors.New("SERVER_PORT must be set")
	}
	cfg.fitTimeouts()

	return cfg, nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
