package llm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/review-gateway/internal/core"
)

// FixtureProviderName is the LLM_PROVIDER value selecting the canned backend.
const FixtureProviderName = "fixture"

// Fixture is a canned review returned without calling any model.
type Fixture struct {
	Response    string   `yaml:"response"`
	Suggestions []string `yaml:"suggestions"`
}

// DefaultFixture is served when no fixture file is configured.
func DefaultFixture() Fixture {
	return Fixture{
		Response: "This is a dummy AI response for your code review",
		Suggestions: []string{
			"Add proper error handling",
			"Consider adding comments",
			"Add type annotations",
		},
	}
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("failed to decode fixture: %w", err)
	}
	if strings.TrimSpace(f.Response) == "" {
		return Fixture{}, fmt.Errorf("fixture response must not be empty")
	}
	return f, nil
}

// FixtureProvider is a deterministic core.Provider for demos and local
// development. It never fails and ignores the messages it is given.
type FixtureProvider struct {
	text string
}

// NewFixtureProvider loads the fixture at path, or the default one when
// path is empty.
func NewFixtureProvider(path string) (*FixtureProvider, error) {
	if path == "" {
		return NewFixtureProviderFrom(DefaultFixture()), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer file.Close()

	f, err := LoadFixture(file)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return NewFixtureProviderFrom(f), nil
}

// NewFixtureProviderFrom builds a provider from an in-memory fixture.
func NewFixtureProviderFrom(f Fixture) *FixtureProvider {
	return &FixtureProvider{text: f.String()}
}

func (p *FixtureProvider) Name() string { return FixtureProviderName }

func (p *FixtureProvider) Generate(_ context.Context, _ []core.ProviderMessage) (string, error) {
	return p.text, nil
}

// String renders the fixture as review text with a suggestion list.
func (f Fixture) String() string {
	if len(f.Suggestions) == 0 {
		return f.Response
	}

	var sb strings.Builder
	sb.WriteString(f.Response)
	sb.WriteString("\n\nSuggestions:\n")
	for _, s := range f.Suggestions {
		sb.WriteString("- ")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
