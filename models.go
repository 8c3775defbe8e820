package agentground

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4o

// Common model identifiers, re-exported for convenience.
const (
	ModelGPT4o     = openai.GPT4o
	ModelGPT4oMini = openai.GPT4oMini
	ModelGPT4Turbo = openai.GPT4Turbo
)

var errEmptyCompletion = errors.New("completion returned no choices")

// modelAliases maps short names to full model identifiers.
var modelAliases = map[string]string{
	"4o":      ModelGPT4o,
	"4o-mini": ModelGPT4oMini,
	"mini":    ModelGPT4oMini,
}

// resolveModel expands a model alias, returning the input unchanged when it
// is not an alias.
func resolveModel(name string) string {
	if name == "" {
		return DefaultModel
	}
	if full, ok := modelAliases[name]; ok {
		return full
	}
	return name
}
