package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService implements smart AI provider routing with fallback
// - Classification: Gemini first (better label adherence), fallback to Ollama
// - Generation: Gemini first, fallback to Ollama on quota exhaustion
type FallbackService struct {
	gemini Capability
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini Capability, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := err.Error()
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// Classify tries Gemini first, falls back to Ollama on quota/connection errors
func (f *FallbackService) Classify(ctx context.Context, content, kind string) (string, error) {
	if f.gemini != nil {
		result, err := f.gemini.Classify(ctx, content, kind)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini classify error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.Classify(ctx, content, kind)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.Classify(ctx, content, kind)
		}

		return "", fmt.Errorf("ollama classification failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available for classification")
}

// Generate tries Gemini first, falls back to Ollama on quota/connection errors
func (f *FallbackService) Generate(ctx context.Context, prompt string) (string, error) {
	if f.gemini != nil {
		result, err := f.gemini.Generate(ctx, prompt)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini generate error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.Generate(ctx, prompt)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.Generate(ctx, prompt)
		}

		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available for generation")
}
