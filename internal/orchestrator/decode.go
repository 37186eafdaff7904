package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeModelJSON is the single boundary where free-text model output
// becomes structured data. It strips markdown code fences, locates the
// outermost JSON value and unmarshals it into v. The caller treats a
// decode error as a step failure; output is never silently coerced.
func DecodeModelJSON(raw string, v any) error {
	cleaned := stripFences(raw)

	start := strings.IndexAny(cleaned, "{[")
	if start < 0 {
		return fmt.Errorf("no JSON value in model output")
	}

	var end int
	if cleaned[start] == '{' {
		end = strings.LastIndex(cleaned, "}")
	} else {
		end = strings.LastIndex(cleaned, "]")
	}
	if end < start {
		return fmt.Errorf("unterminated JSON value in model output")
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
