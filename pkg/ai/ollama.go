package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mailmind-backend/pkg/ai/prompts"
)

// OllamaService implements Capability using a local Ollama instance
type OllamaService struct {
	BaseURL string
	Model   string
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{BaseURL: baseURL, Model: model}
}

// Generate implements Generator via the /api/generate endpoint.
func (o *OllamaService) Generate(ctx context.Context, prompt string) (string, error) {
	url := o.BaseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.2,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Response, nil
}

// Classify implements Classifier using the shared taxonomy prompts.
func (o *OllamaService) Classify(ctx context.Context, content, kind string) (string, error) {
	prompt, err := prompts.ForClassifier(kind, content)
	if err != nil {
		return "", err
	}
	raw, err := o.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return prompts.NormalizeLabel(raw), nil
}
