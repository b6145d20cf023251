package llm

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/sevigo/review-gateway/internal/core"
)

//go:embed prompts/code_review.prompt
var codeReviewPrompt string

// PromptManager renders the fixed reviewer persona around user code.
type PromptManager struct {
	persona *template.Template
}

// NewPromptManager parses the embedded reviewer persona.
func NewPromptManager() (*PromptManager, error) {
	return newPromptManager(codeReviewPrompt)
}

func newPromptManager(persona string) (*PromptManager, error) {
	tmpl, err := template.New("code_review").Option("missingkey=error").Parse(persona)
	if err != nil {
		return nil, fmt.Errorf("could not parse reviewer persona: %w", err)
	}
	return &PromptManager{persona: tmpl}, nil
}

// Compose renders the persona with sourceText as a single message under
// core.ReviewerRole. It satisfies review.Composer.
func (pm *PromptManager) Compose(sourceText string) ([]core.ProviderMessage, error) {
	var buf bytes.Buffer
	if err := pm.persona.Execute(&buf, core.ReviewPromptData{Code: sourceText}); err != nil {
		return nil, fmt.Errorf("failed to render reviewer persona: %w", err)
	}
	return []core.ProviderMessage{{Role: core.ReviewerRole, Content: buf.String()}}, nil
}
