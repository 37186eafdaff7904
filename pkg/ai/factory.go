package ai

import (
	"log"

	"mailmind-backend/pkg/config"
	"mailmind-backend/pkg/gemini"
)

// NewCapability creates the AI capability based on configuration.
// Provider selection:
//   - "gemini": Gemini only
//   - "ollama": Ollama only
//   - "auto" (default): Gemini with Ollama fallback
func NewCapability(cfg *config.Config) Capability {
	provider := ProviderType(cfg.AIProvider)

	var geminiSvc Capability
	if cfg.GeminiApiKey != "" {
		geminiSvc = gemini.NewGeminiService(cfg.GeminiApiKey)
	}
	ollamaSvc := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)

	switch provider {
	case ProviderGemini:
		if geminiSvc == nil {
			log.Println("[AI] GEMINI_API_KEY not set, falling back to Ollama")
			return ollamaSvc
		}
		log.Println("[AI] Using Gemini provider")
		return geminiSvc
	case ProviderOllama:
		log.Println("[AI] Using Ollama provider")
		return ollamaSvc
	default:
		if geminiSvc == nil {
			log.Println("[AI] GEMINI_API_KEY not set, using Ollama only")
			return ollamaSvc
		}
		log.Println("[AI] Using Gemini with Ollama fallback")
		return NewFallbackService(geminiSvc, ollamaSvc)
	}
}
