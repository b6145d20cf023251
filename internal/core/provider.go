// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
)

// Provider is the text-generation capability a review is produced by. It
// decouples the review client from any concrete model vendor so that the
// gateway, the CLI and the tests can swap backends freely.
//
//go:generate mockgen -destination=../mocks/mock_provider.go -package=mocks . Provider
type Provider interface {
	// Generate sends the composed messages to the model and returns the raw
	// generated text. Implementations must not retry on their own; retry
	// policy belongs to the caller.
	Generate(ctx context.Context, messages []ProviderMessage) (string, error)

	// Name identifies the backend in logs, e.g. "gemini" or "fixture".
	Name() string
}

// Reviewer produces a review for a piece of source code. The gateway depends
// on this contract rather than on the retrying client directly.
type Reviewer interface {
	// Review returns the generated review text, or an error once the call
	// can no longer succeed.
	Review(ctx context.Context, sourceText string) (string, error)
}
