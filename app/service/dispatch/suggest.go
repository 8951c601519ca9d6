package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var claimLineRegex = regexp.MustCompile(`^Claim \d+: (.*)`)

// suggestClaims asks the generator to rephrase the message into checkable
// claims and turns them into interactive buttons. Each button id is recorded
// in the routing table before the reply goes out, so a tap can be resolved
// back to the full claim.
func (s *Service) suggestClaims(ctx context.Context, messageText, conversationContext string) (Reply, error) {
	prompt := renderPrompt(claimSuggestionPromptTemplate, map[string]any{
		"message_text": messageText,
		"context":      conversationContext,
	})

	response, err := s.factChecker.Generate(ctx, prompt, messageText)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to generate claim suggestions: %w", err)
	}

	claims := parseSuggestedClaims(response, s.cfg.Dispatch.MaxSuggestions)

	reply := Reply{Text: response}
	for i, claim := range claims {
		buttonID := newButtonID()
		s.routingSvc.RecordButton(buttonID, claim)

		reply.Buttons = append(reply.Buttons, Button{
			ID:    buttonID,
			Title: fmt.Sprintf("Claim %d", i+1),
		})
	}

	return reply, nil
}

func parseSuggestedClaims(response string, max int) []string {
	var claims []string

	for _, line := range strings.Split(response, "\n") {
		match := claimLineRegex.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}

		claim := strings.TrimSpace(match[1])
		if claim == "" {
			continue
		}

		claims = append(claims, claim)
		if len(claims) == max {
			break
		}
	}

	return claims
}

// short enough for button payload limits on both platforms
func newButtonID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
