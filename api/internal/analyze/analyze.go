// Package analyze turns extracted text into a short plain-language summary
// by asking a generative model once per call.
package analyze

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyText = errors.New("empty text")

const promptTemplate = `
Give a short, simple summary of the content below.
Explain what is going on in 5 lines maximum.
Use easy words so anyone can understand.

Text:
`

// Generator is one remote model call. Implementations report a missing key,
// timeouts, transport and upstream failures through the gemini error kinds.
type Generator interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen Generator
}

func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// BuildPrompt wraps text verbatim; nothing is trimmed or truncated.
func BuildPrompt(text string) string {
	return promptTemplate + text + "\n"
}

func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return s.gen.Generate(ctx, BuildPrompt(text))
}

func (s *Service) Model() string {
	return s.gen.Name() + "/" + s.gen.GetModel()
}
