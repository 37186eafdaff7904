package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mailmind-backend/pkg/ai/prompts"
)

type GeminiService struct {
	ApiKey string
	Model  string
}

func NewGeminiService(apiKey string) *GeminiService {
	// gemini-2.5-flash is fast enough for per-event classification
	return &GeminiService{ApiKey: apiKey, Model: "gemini-2.5-flash"}
}

// Generate sends a prompt to the generateContent endpoint and returns the
// first candidate's text.
func (g *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", g.Model, g.ApiKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	// Parse text from the first candidate
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no content returned")
}

// Classify renders the taxonomy prompt for kind and normalizes the label.
func (g *GeminiService) Classify(ctx context.Context, content, kind string) (string, error) {
	prompt, err := prompts.ForClassifier(kind, content)
	if err != nil {
		return "", err
	}
	raw, err := g.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return prompts.NormalizeLabel(raw), nil
}
