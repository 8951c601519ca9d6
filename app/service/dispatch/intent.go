package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// detectIntent classifies a short message through the generation endpoint.
// The classifier occasionally returns malformed JSON; that degrades to a
// fact_check intent over the whole message instead of failing the turn.
func (s *Service) detectIntent(ctx context.Context, messageText, conversationContext string) intentResult {
	fallback := intentResult{
		IntentType:  "fact_check",
		SplitClaims: []string{messageText},
	}

	prompt := renderPrompt(intentDetectionPromptTemplate, map[string]any{
		"message_text": messageText,
		"context":      conversationContext,
	})

	response, err := s.factChecker.Generate(ctx, prompt, messageText)
	if err != nil {
		slog.Warn("Intent classification call failed",
			"error", err,
		)
		return fallback
	}

	// models like to wrap JSON in markdown fences
	response = strings.Trim(response, "`")
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "json")
	response = strings.TrimSpace(response)

	var result intentResult
	if err = json.Unmarshal([]byte(response), &result); err != nil {
		slog.Info("Failed to decode intent response",
			"response", response,
		)
		return fallback
	}

	if result.IntentType == "" {
		return fallback
	}

	return result
}
