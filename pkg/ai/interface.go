package ai

import "context"

// Classifier picks exactly one label from a fixed taxonomy for the given
// content. kind tells the provider which taxonomy applies ("category",
// "intent", "reminder").
type Classifier interface {
	Classify(ctx context.Context, content, kind string) (string, error)
}

// Generator produces free text (or JSON embedded in text) from a prompt.
// Both capabilities are non-deterministic, network-bound LLM calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Capability bundles the two model-backed operations the orchestrator
// consumes. Implement this interface to add new providers (Gemini,
// Ollama, OpenAI, etc.)
type Capability interface {
	Classifier
	Generator
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
