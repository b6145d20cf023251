// Package review implements the resilient remote-call wrapper that turns a
// code snippet into a generated review. A Client composes the persona
// messages, calls the injected core.Provider and masks transient overload
// errors with a bounded, quadratic backoff. Every other failure is returned
// on the spot.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sevigo/review-gateway/internal/core"
)

// Composer turns user source text into the outbound message set.
type Composer interface {
	Compose(sourceText string) ([]core.ProviderMessage, error)
}

// ComposerFunc adapts a plain function to the Composer interface.
type ComposerFunc func(sourceText string) ([]core.ProviderMessage, error)

func (f ComposerFunc) Compose(sourceText string) ([]core.ProviderMessage, error) {
	return f(sourceText)
}

// Client calls a provider with bounded retries. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	provider  core.Provider
	composer  Composer
	policy    RetryPolicy
	retryable Classifier
	newTimer  func() backoff.Timer
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPolicy replaces the default retry policy.
func WithPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.policy = p.normalized()
	}
}

// WithClassifier replaces the default overload classifier.
func WithClassifier(fn Classifier) Option {
	return func(c *Client) {
		if fn != nil {
			c.retryable = fn
		}
	}
}

// WithTimer sets the factory used for backoff waits. One timer is created
// per Review call.
func WithTimer(fn func() backoff.Timer) Option {
	return func(c *Client) {
		c.newTimer = fn
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a review client around the given provider.
func New(provider core.Provider, composer Composer, opts ...Option) *Client {
	c := &Client{
		provider:  provider,
		composer:  composer,
		policy:    DefaultPolicy(),
		retryable: IsOverloaded,
		logger:    slog.Default(),
	}
	if c.composer == nil {
		c.composer = ComposerFunc(plainMessages)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// plainMessages sends the source text as-is under the reviewer role.
func plainMessages(sourceText string) ([]core.ProviderMessage, error) {
	return []core.ProviderMessage{{Role: core.ReviewerRole, Content: sourceText}}, nil
}

// Policy returns the effective retry policy.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// Review composes the persona messages for sourceText and returns the text
// generated by the provider. On failure it returns a *core.ProviderError
// holding the last provider error.
func (c *Client) Review(ctx context.Context, sourceText string) (string, error) {
	if sourceText == "" {
		return "", core.ErrEmptyPrompt
	}

	messages, err := c.composer.Compose(sourceText)
	if err != nil {
		return "", fmt.Errorf("failed to compose review messages: %w", err)
	}

	var (
		text    string
		attempt int
		lastErr error
	)

	operation := func() error {
		attempt++
		out, err := c.provider.Generate(ctx, messages)
		if err == nil {
			text = out
			return nil
		}
		lastErr = err
		if !c.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		c.logger.Warn("provider call failed, retrying",
			"provider", c.provider.Name(),
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)
	}

	var timer backoff.Timer
	if c.newTimer != nil {
		timer = c.newTimer()
	}

	b := backoff.WithContext(c.policy.backOff(), ctx)
	if err := backoff.RetryNotifyWithTimer(operation, b, notify, timer); err != nil {
		perr := &core.ProviderError{Attempts: attempt, Err: err}
		var permanent *backoff.PermanentError
		switch {
		case errors.As(err, &permanent):
			perr.Err = permanent.Err
		case lastErr != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) && !errors.Is(lastErr, err):
			// The context ended between attempts; report what the provider said.
			perr.Err = lastErr
			perr.Interrupted = err
		}
		c.logger.Error("review generation failed",
			"provider", c.provider.Name(),
			"attempts", attempt,
			"error", perr.Err,
			"interrupted", perr.Interrupted,
		)
		return "", perr
	}

	if attempt > 1 {
		c.logger.Info("review generated after retry", "provider", c.provider.Name(), "attempts", attempt)
	}
	return text, nil
}
