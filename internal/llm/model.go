package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/review-gateway/internal/core"
)

// ModelAdapter exposes a goframe llms.Model as a core.Provider.
type ModelAdapter struct {
	name  string
	model llms.Model
}

// NewModelAdapter wraps model under the given provider name.
func NewModelAdapter(name string, model llms.Model) *ModelAdapter {
	return &ModelAdapter{name: name, model: model}
}

func (a *ModelAdapter) Name() string { return a.name }

// Generate flattens the messages into a single prompt and makes exactly one
// model call. Provider errors are returned untouched.
func (a *ModelAdapter) Generate(ctx context.Context, messages []core.ProviderMessage) (string, error) {
	prompt := FlattenMessages(messages)
	if prompt == "" {
		return "", errors.New("no message content to send")
	}
	return llms.GenerateFromSinglePrompt(ctx, a.model, prompt)
}

// FlattenMessages joins message contents into one prompt, skipping blanks.
func FlattenMessages(messages []core.ProviderMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if c := strings.TrimSpace(m.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n")
}
